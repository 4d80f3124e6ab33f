package domain

import (
	"encoding/json"
	"fmt"
)

// Article представляет отдельную статью, спроецированную из элемента RSS-ленты.
// Необязательные поля хранятся указателями: nil означает, что поля не было
// в исходном элементе, и оно не попадает в JSON. Пустая строка означает,
// что поле было, но пустое.
type Article struct {
	Title       *string  `json:"title,omitempty"`
	Link        *string  `json:"link,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Author      *string  `json:"author,omitempty"`
	Description *string  `json:"description,omitempty"`
	PubDate     *string  `json:"pubDate,omitempty"`
	Category    Category `json:"category,omitempty"`
}

// Category хранит категории статьи в порядке документа.
// Одна категория сериализуется как строка, несколько - как массив,
// так же как они пришли из ленты.
type Category []string

// IsScalar сообщает, сериализуется ли категория одной строкой.
func (c Category) IsScalar() bool {
	return len(c) == 1
}

func (c Category) MarshalJSON() ([]byte, error) {
	if c.IsScalar() {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = Category{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("category must be a string or an array of strings: %w", err)
	}
	*c = Category(many)
	return nil
}
