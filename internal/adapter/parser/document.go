package parser

import (
	"encoding/xml"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Node - узел разобранного XML-документа без привязки к формату ленты.
// Символьные данные хранятся один раз, в том узле, где они встретились.
type Node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Node
	content  []segment
}

// segment - фрагмент содержимого узла: текст либо дочерний элемент.
type segment struct {
	text  string
	child *Node
}

// Text возвращает весь текст узла и его потомков в порядке документа
// с обрезанными пробелами по краям (CDATA включается как текст).
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.writeText(&b)
	return strings.TrimSpace(b.String())
}

func (n *Node) writeText(b *strings.Builder) {
	for _, s := range n.content {
		if s.child != nil {
			s.child.writeText(b)
			continue
		}
		b.WriteString(s.text)
	}
}

func (n *Node) appendChild(child *Node) {
	n.Children = append(n.Children, child)
	n.content = append(n.content, segment{child: child})
}

func (n *Node) appendText(text string) {
	if last := len(n.content) - 1; last >= 0 && n.content[last].child == nil {
		n.content[last].text += text
		return
	}
	n.content = append(n.content, segment{text: text})
}

// Child возвращает первого потомка с указанным локальным именем
// из пространства имен space, либо nil.
func (n *Node) Child(space, local string) *Node {
	for _, c := range n.Children {
		if c.matches(space, local) {
			return c
		}
	}
	return nil
}

// ChildrenNamed возвращает всех потомков с указанным именем в порядке документа.
func (n *Node) ChildrenNamed(space, local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.matches(space, local) {
			out = append(out, c)
		}
	}
	return out
}

// Attr возвращает значение атрибута без пространства имен.
func (n *Node) Attr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// matches сравнивает имя узла. Элемент без пространства имен совпадает
// с любым space, чтобы документ с xmlns по умолчанию на корне
// читался так же, как документ без него.
func (n *Node) matches(space, local string) bool {
	if n.Name.Local != local {
		return false
	}
	return n.Name.Space == "" || n.Name.Space == space
}

// Document - корректный XML-документ ленты.
// Type определяется по содержимому и используется только для диагностики.
type Document struct {
	Type gofeed.FeedType
	Root *Node
}

// Namespace возвращает пространство имен корневого элемента.
// Поля элементов ищутся только в нем, поэтому atom:link или media:content
// не подменяют link и image.
func (d *Document) Namespace() string {
	if d == nil || d.Root == nil {
		return ""
	}
	return d.Root.Name.Space
}

// Items возвращает элементы rss > channel > item. Если корень не rss
// или в нем нет channel, результат пустой: это лента без статей, а не ошибка.
func (d *Document) Items() []*Node {
	if d == nil || d.Root == nil {
		return nil
	}
	ns := d.Namespace()
	if !d.Root.matches(ns, "rss") {
		return nil
	}
	channel := d.Root.Child(ns, "channel")
	if channel == nil {
		return nil
	}
	return channel.ChildrenNamed(ns, "item")
}

// TypeName возвращает читаемое название формата для логов.
func (d *Document) TypeName() string {
	return typeName(d.Type)
}

func typeName(t gofeed.FeedType) string {
	switch t {
	case gofeed.FeedTypeRSS:
		return "rss"
	case gofeed.FeedTypeAtom:
		return "atom"
	case gofeed.FeedTypeJSON:
		return "json"
	default:
		return "unknown"
	}
}
