package model

// Article is a catalogue entry identified by its code. The code is used as a
// single URL path segment, so it may not contain "/" nor be ".", ".." or the
// reserved "all".
type Article struct {
	Code        string  `json:"code" bson:"_id" gorm:"primaryKey" validate:"required,excludesall=/,ne=.,ne=..,ne=all"`
	Designation string  `json:"designation" bson:"designation"`
	Price       float64 `json:"price" bson:"price"`
}

// TableName pins the relational table name.
func (Article) TableName() string {
	return "articles"
}

// NewArticle creates an Article with the given values.
func NewArticle(code, designation string, price float64) Article {
	return Article{
		Code:        code,
		Designation: designation,
		Price:       price,
	}
}
