package api

// Payload is the body returned by the generate endpoint.
type Payload struct {
	Topic       string    `json:"topic"`
	Category    string    `json:"category"`
	Description string    `json:"desc"`
	Cards       []RawCard `json:"cards"`
}

// RawCard is one card exactly as the service emits it. The first card of a
// set usually carries only Title; later ones carry Subtitle and Body.
type RawCard struct {
	Title             string   `json:"title,omitempty"`
	Subtitle          string   `json:"sub_title,omitempty"`
	Body              string   `json:"body,omitempty"`
	ImageKeyword      string   `json:"img_keyword,omitempty"`
	ImageURLs         []string `json:"img_urls,omitempty"`
	ImageURL          string   `json:"img_url,omitempty"`
	SourceURLs        []string `json:"ref_urls,omitempty"`
	ImageDescriptions []string `json:"img_desc,omitempty"`
}

// Card categories chosen by the generator.
const (
	CategoryPlace = "place"
	CategoryText  = "text"
	CategoryNews  = "news"
)
