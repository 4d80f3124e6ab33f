package domain

// Source представляет настроенный источник статей: имя, адрес RSS-ленты
// и цвета для отображения на клиенте. Создается вне сервиса, сервис
// только читает его.
type Source struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	ColorOne string `json:"colorOne"`
	ColorTwo string `json:"colorTwo"`
}
