package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"

	"finscreen/internal/domain"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"
)

// XMLParser проверяет, что содержимое ленты является корректным XML,
// и строит по нему дерево Document.
type XMLParser struct {
	log *slog.Logger
}

func NewXMLParser(log *slog.Logger) *XMLParser {
	return &XMLParser{
		log: log.With(slog.String("component", "parser")),
	}
}

// Parse читает документ целиком в строгом режиме: ровно один корневой элемент,
// все теги закрыты и согласованы, вне корня нет текста, неизвестные сущности
// запрещены. При любом нарушении возвращается *domain.MalformedFeedError и nil:
// частично разобранное дерево наружу не отдается.
// Документы в кодировке, отличной от UTF-8, перекодируются по объявлению encoding.
func (p *XMLParser) Parse(ctx context.Context, raw []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	feedType := gofeed.DetectFeedType(bytes.NewReader(raw))
	root, err := decodeTree(raw)
	if err != nil {
		var malformed *domain.MalformedFeedError
		if errors.As(err, &malformed) {
			malformed.Format = typeName(feedType)
			p.log.Warn("Feed is not well-formed XML",
				slog.Int("line", malformed.Line),
				slog.String("feed_type", malformed.Format),
				slog.Any("error", malformed.Err),
			)
		}
		return nil, err
	}
	doc := &Document{
		Type: feedType,
		Root: root,
	}
	p.log.Debug("Feed parsed",
		slog.String("root", root.Name.Local),
		slog.String("feed_type", doc.TypeName()),
	)
	return doc, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

func decodeTree(raw []byte) (*Node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	decoder.Strict = true
	decoder.CharsetReader = charset.NewReaderLabel

	malformed := func(err error) error {
		line, _ := decoder.InputPos()
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			line = syntaxErr.Line
		}
		return &domain.MalformedFeedError{Line: line, Err: err}
	}

	var root *Node
	var stack []*Node
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name, Attrs: t.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, malformed(errors.New("multiple root elements"))
				}
				root = node
			} else {
				stack[len(stack)-1].appendChild(node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, malformed(errors.New("text outside of root element"))
				}
				continue
			}
			stack[len(stack)-1].appendText(string(t))
		}
	}
	if root == nil {
		return nil, malformed(errors.New("no root element"))
	}
	return root, nil
}
