package colorbook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ImageRecord mirrors a coloring image as returned by the API.
type ImageRecord struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	Title        string `json:"title"`
	Prompt       string `json:"prompt,omitempty"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Created      string `json:"created,omitempty"`
}

// UnmarshalJSON rejects records that are missing a required field. Unknown
// fields are ignored.
func (r *ImageRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           *string `json:"id"`
		Filename     *string `json:"filename"`
		Title        *string `json:"title"`
		Prompt       *string `json:"prompt"`
		URL          *string `json:"url"`
		ThumbnailURL *string `json:"thumbnailUrl"`
		Created      *string `json:"created"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	missing := make([]string, 0, 4)
	if raw.ID == nil {
		missing = append(missing, "id")
	}
	if raw.Filename == nil {
		missing = append(missing, "filename")
	}
	if raw.Title == nil {
		missing = append(missing, "title")
	}
	if raw.URL == nil {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("image record missing %s", strings.Join(missing, ", "))
	}
	*r = ImageRecord{
		ID:           *raw.ID,
		Filename:     *raw.Filename,
		Title:        *raw.Title,
		URL:          *raw.URL,
		Prompt:       deref(raw.Prompt),
		ThumbnailURL: deref(raw.ThumbnailURL),
		Created:      deref(raw.Created),
	}
	return nil
}

// ResolveURL joins base and the record's relative URL. Trailing slashes on base
// are dropped so "http://h" and "http://h/" resolve the same way.
func (r ImageRecord) ResolveURL(base string) string {
	return normalizeBase(base) + r.URL
}

// ResolveThumbnailURL prefers the thumbnail path and falls back to the full image.
func (r ImageRecord) ResolveThumbnailURL(base string) string {
	if r.ThumbnailURL == "" {
		return r.ResolveURL(base)
	}
	return normalizeBase(base) + r.ThumbnailURL
}

// ImagesResponse mirrors /api/images.
type ImagesResponse struct {
	Images []ImageRecord `json:"images"`
}

// SearchResponse mirrors /api/search.
type SearchResponse struct {
	Images []ImageRecord `json:"images"`
	Query  string        `json:"query"`
	Total  int           `json:"total"`
}

// GenerateRequest is the body posted to /api/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse mirrors /api/generate.
type GenerateResponse struct {
	Image *ImageRecord `json:"image"`
}

// HealthStatus mirrors /api/health.
type HealthStatus struct {
	Status      string `json:"status"`
	ImagesCount int    `json:"images_count"`
}

func normalizeBase(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
