// Package projector превращает разобранный документ ленты в список статей
// с фиксированным набором полей.
package projector

import (
	"finscreen/internal/adapter/parser"
	"finscreen/internal/domain"
)

// Variant определяет набор полей в зависимости от эндпоинта.
type Variant int

const (
	// VariantSource - статьи зарегистрированного источника: базовые поля и author.
	VariantSource Variant = iota
	// VariantFeedURL - статьи произвольной ленты: базовые поля и image.
	VariantFeedURL
)

func (v Variant) String() string {
	switch v {
	case VariantSource:
		return "source"
	case VariantFeedURL:
		return "feed-url"
	default:
		return "unknown"
	}
}

// Project возвращает по статье на каждый item документа, в порядке документа.
// Поля вне набора отбрасываются, отсутствующие в item поля остаются nil.
// category передается как есть: одна категория - строка, несколько - массив.
// Функция чистая: повторный вызов на том же документе дает тот же результат.
// Результат никогда не nil, чтобы пустая лента кодировалась как [].
func Project(doc *parser.Document, variant Variant) []domain.Article {
	items := doc.Items()
	articles := make([]domain.Article, 0, len(items))
	ns := doc.Namespace()
	for _, item := range items {
		article := domain.Article{
			Title:       text(item, ns, "title"),
			Link:        text(item, ns, "link"),
			PubDate:     text(item, ns, "pubDate"),
			Description: text(item, ns, "description"),
			Category:    category(item, ns),
		}
		switch variant {
		case VariantSource:
			article.Author = text(item, ns, "author")
		case VariantFeedURL:
			article.Image = image(item, ns)
		}
		articles = append(articles, article)
	}
	return articles
}

func text(item *parser.Node, ns, name string) *string {
	node := item.Child(ns, name)
	if node == nil {
		return nil
	}
	value := node.Text()
	return &value
}

func category(item *parser.Node, ns string) domain.Category {
	nodes := item.ChildrenNamed(ns, "category")
	if len(nodes) == 0 {
		return nil
	}
	out := make(domain.Category, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Text())
	}
	return out
}

// image поддерживает и <image>url</image>, и <image><url>url</url></image>.
func image(item *parser.Node, ns string) *string {
	node := item.Child(ns, "image")
	if node == nil {
		return nil
	}
	if url := node.Child(ns, "url"); url != nil {
		value := url.Text()
		return &value
	}
	value := node.Text()
	return &value
}
