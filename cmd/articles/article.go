package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"article-catalog/internal/model"
	"article-catalog/pkg/client"

	"github.com/spf13/cobra"
)

// newArticleCmd builds the client subcommands that talk to a running server.
func newArticleCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "article",
		Short: "Manage articles on a running server",
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8080", "Base URL of the article server")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	newClient := func() *client.Client {
		return client.New(addr, client.WithTimeout(timeout))
	}

	var codeFilter, designationFilter string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List articles, optionally filtered by code or designation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			articles, err := newClient().List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), filterArticles(articles, codeFilter, designationFilter))
		},
	}
	listCmd.Flags().StringVar(&codeFilter, "code", "", "Only articles whose code contains this text")
	listCmd.Flags().StringVar(&designationFilter, "designation", "", "Only articles whose designation contains this text")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "get [code]",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			article, err := newClient().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), article)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create [code] [designation] [price]",
		Short: "Create an article",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			article, err := articleFromArgs(args)
			if err != nil {
				return err
			}
			created, err := newClient().Create(cmd.Context(), article)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update [code] [designation] [price]",
		Short: "Replace an existing article",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			article, err := articleFromArgs(args)
			if err != nil {
				return err
			}
			updated, err := newClient().Update(cmd.Context(), article.Code, article)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), updated)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [code]",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func articleFromArgs(args []string) (model.Article, error) {
	price, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return model.Article{}, fmt.Errorf("invalid price %q: %w", args[2], err)
	}
	return model.NewArticle(args[0], args[1], price), nil
}

// filterArticles keeps articles matching every non-empty filter, case-insensitively.
func filterArticles(articles []model.Article, code, designation string) []model.Article {
	code, designation = strings.ToLower(code), strings.ToLower(designation)
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if code != "" && !strings.Contains(strings.ToLower(a.Code), code) {
			continue
		}
		if designation != "" && !strings.Contains(strings.ToLower(a.Designation), designation) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
