package handlers

import "time"

// RootResponse is returned by GET /.
type RootResponse struct {
	Body struct {
		Message string `example:"ShortLink API is running" json:"message"`
	}
}

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL string `doc:"The http or https URL to shorten" example:"https://example.com/very/long/path" json:"url" minLength:"1"`
	}
}

// CreateShortURLResponse is returned for new and already registered URLs alike.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL" header:"Location"`
	Body     struct {
		Code        string `doc:"The short code"                example:"eiFqkG"                             json:"code"`
		ShortURL    string `doc:"The full short URL"            example:"http://localhost:8888/eiFqkG"       json:"shortUrl"`
		OriginalURL string `doc:"The normalized original URL" example:"https://example.com/very/long/path" json:"originalUrl"`
	}
}

// RedirectRequest identifies the link to follow.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"eiFqkG" maxLength:"64" path:"code"`
}

// RedirectResponse carries no body, only the redirect.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// GetLinkRequest identifies the link to describe.
type GetLinkRequest struct {
	Code string `doc:"The short code" example:"eiFqkG" maxLength:"64" path:"code"`
}

// GetLinkResponse describes a registered link.
type GetLinkResponse struct {
	Body struct {
		Code        string    `example:"eiFqkG"                             json:"code"`
		ShortURL    string    `example:"http://localhost:8888/eiFqkG"       json:"shortUrl"`
		OriginalURL string    `example:"https://example.com/very/long/path" json:"originalUrl"`
		CreatedAt   time.Time `json:"createdAt"`
		Clicks      int64     `doc:"Redirects recorded so far" json:"clicks"`
	}
}
