package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"finscreen/internal/domain"
	"finscreen/internal/logger"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLParser_Parse_Success(t *testing.T) {
	parser := NewXMLParser(logger.Discard())

	xmlData := `<?xml version="1.0" encoding="UTF-8"?>
	<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
	<channel>
	<title>Test Feed</title>
	<atom:link href="https://example.com/rss" rel="self"/>
	<item>
	<title>Item 1</title>
	<link>https://example.com/item1</link>
	<description><![CDATA[<p>Item 1 Description</p>]]></description>
	<pubDate>Mon, 02 Jan 2006 15:04:05 MST</pubDate>
	</item>
	<item>
	<title>Item 2</title>
	<link>https://example.com/item2</link>
	</item>
	</channel>
	</rss>`

	doc, err := parser.Parse(context.Background(), []byte(xmlData))

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, gofeed.FeedTypeRSS, doc.Type)
	assert.Equal(t, "rss", doc.TypeName())
	assert.Equal(t, "rss", doc.Root.Name.Local)

	items := doc.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Item 1", items[0].Child("", "title").Text())
	assert.Equal(t, "<p>Item 1 Description</p>", items[0].Child("", "description").Text())
	assert.Nil(t, items[1].Child("", "description"))

	channel := doc.Root.Child("", "channel")
	require.NotNil(t, channel)
	assert.Nil(t, channel.Child("", "link"), "atom:link must not match link")
	href, ok := channel.Child("http://www.w3.org/2005/Atom", "link").Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/rss", href)
}

func TestXMLParser_Parse_InvalidXML(t *testing.T) {
	parser := NewXMLParser(logger.Discard())
	tests := []struct {
		name string
		data string
	}{
		{name: "unclosed tag", data: "<rss>\n<channel>\n<title>Test Feed</title>\n<invalid-tag>\n</channel>\n</rss>"},
		{name: "truncated", data: "<rss><channel><item><title>A</title>"},
		{name: "empty", data: ""},
		{name: "plain text", data: "Service temporarily unavailable"},
		{name: "html entity", data: "<rss><channel><title>A&nbsp;B</title></channel></rss>"},
		{name: "two roots", data: "<rss></rss><rss></rss>"},
		{name: "text after root", data: "<rss></rss>trailing"},
		{name: "json feed", data: `{"version": "https://jsonfeed.org/version/1.1", "items": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.Parse(context.Background(), []byte(tt.data))

			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, domain.ErrMalformedFeed))
		})
	}
}

func TestXMLParser_Parse_ReportsLine(t *testing.T) {
	parser := NewXMLParser(logger.Discard())
	data := "<rss>\n<channel>\n<item>\n</channel>\n</rss>"

	_, err := parser.Parse(context.Background(), []byte(data))

	var malformed *domain.MalformedFeedError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 4, malformed.Line)
}

func TestXMLParser_Parse_ContextCancelled(t *testing.T) {
	parser := NewXMLParser(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := parser.Parse(ctx, []byte("<rss><channel></channel></rss>"))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, domain.ErrMalformedFeed))
	assert.Nil(t, doc)
}

func TestXMLParser_Parse_EmptyFeed(t *testing.T) {
	parser := NewXMLParser(logger.Discard())

	doc, err := parser.Parse(context.Background(), []byte(`<rss><channel><title>Empty</title></channel></rss>`))

	require.NoError(t, err)
	assert.Empty(t, doc.Items())
}

func TestXMLParser_Parse_NonRSSRootHasNoItems(t *testing.T) {
	parser := NewXMLParser(logger.Discard())
	atom := `<feed xmlns="http://www.w3.org/2005/Atom"><title>A</title><entry><title>E</title></entry></feed>`

	doc, err := parser.Parse(context.Background(), []byte(atom))

	require.NoError(t, err)
	assert.Equal(t, gofeed.FeedTypeAtom, doc.Type)
	assert.Empty(t, doc.Items())
}

func TestXMLParser_Parse_DefaultNamespace(t *testing.T) {
	parser := NewXMLParser(logger.Discard())
	data := `<rss xmlns="http://example.com/ns"><channel><item><title>A</title></item></channel></rss>`

	doc, err := parser.Parse(context.Background(), []byte(data))

	require.NoError(t, err)
	items := doc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Child(doc.Namespace(), "title").Text())
}

func TestXMLParser_Parse_Windows1251(t *testing.T) {
	parser := NewXMLParser(logger.Discard())
	// "Новости" в windows-1251.
	data := "<?xml version=\"1.0\" encoding=\"windows-1251\"?>" +
		"<rss><channel><item><title>\xcd\xee\xe2\xee\xf1\xf2\xe8</title></item></channel></rss>"

	doc, err := parser.Parse(context.Background(), []byte(data))

	require.NoError(t, err)
	items := doc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Новости", items[0].Child("", "title").Text())
}

func TestXMLParser_Parse_ByteOrderMark(t *testing.T) {
	parser := NewXMLParser(logger.Discard())

	doc, err := parser.Parse(context.Background(), []byte("\xef\xbb\xbf<rss><channel><item/></channel></rss>"))

	require.NoError(t, err)
	assert.Len(t, doc.Items(), 1)
}

func TestDocument_Items_NilSafe(t *testing.T) {
	var doc *Document
	assert.Empty(t, doc.Items())
	assert.Empty(t, (&Document{}).Items())
}

func TestXMLParser_Parse_MalformedReportsDetectedFormat(t *testing.T) {
	parser := NewXMLParser(logger.Discard())
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{name: "json feed", data: `{"version": "https://jsonfeed.org/version/1.1", "items": []}`, format: "json"},
		{name: "truncated rss", data: "<rss version=\"2.0\"><channel><item><title>A</title>", format: "rss"},
		{name: "plain text", data: "Service temporarily unavailable", format: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(context.Background(), []byte(tt.data))

			var malformed *domain.MalformedFeedError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.format, malformed.Format)
		})
	}
}

func TestNode_TextKeptOnce(t *testing.T) {
	parser := NewXMLParser(logger.Discard())
	data := `<rss><channel><title>Feed</title><item><title>Head <b>bold</b> tail</title>` +
		`<description><![CDATA[<p>x</p>]]> more</description></item></channel></rss>`

	doc, err := parser.Parse(context.Background(), []byte(data))
	require.NoError(t, err)

	items := doc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Head bold tail", items[0].Child("", "title").Text())
	assert.Equal(t, "<p>x</p> more", items[0].Child("", "description").Text())
	assert.Equal(t, "FeedHead bold tail<p>x</p> more", doc.Root.Text())

	channel := doc.Root.Child("", "channel")
	for _, n := range []*Node{doc.Root, channel, items[0]} {
		for _, s := range n.content {
			assert.Empty(t, strings.TrimSpace(s.text), "%s must not copy descendant text", n.Name.Local)
		}
	}

	var missing *Node
	assert.Equal(t, "", missing.Text())
}
