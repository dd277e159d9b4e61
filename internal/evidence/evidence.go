// Package evidence decodes the heterogeneous strings stored in a report's
// evidence list and the structured resident metadata embedded in notes.
package evidence

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/google/uuid"
)

const (
	MediaKind    = "resident-media"
	MetadataKind = "resident-metadata"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Kind tags a decoded evidence entry.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindVideo
	KindStructuredMedia
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindStructuredMedia:
		return "structured-media"
	default:
		return "text"
	}
}

type Attachment struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type MediaType `json:"type"`
	URL  string    `json:"url"`
	Size *int64    `json:"size,omitempty"`
}

// Entry is one evidence string decoded once at the boundary. Media is set
// for every kind except KindText.
type Entry struct {
	Kind  Kind
	Raw   string
	Media *Attachment
}

func (e Entry) IsMedia() bool {
	return e.Kind != KindText
}

type Buckets struct {
	Media []Attachment `json:"media"`
	Text  []string     `json:"text"`
}

// MediaPayload is the serialized attachment a resident upload is stored as.
type MediaPayload struct {
	Kind    string    `json:"kind"`
	Version int       `json:"version"`
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    MediaType `json:"type"`
	DataURL string    `json:"dataUrl"`
	Size    *int64    `json:"size,omitempty"`
}

type AttachmentSummary struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type MediaType `json:"type"`
	Size *int64    `json:"size,omitempty"`
}

// MetadataPayload is embedded in notes as JSON for resident submissions.
type MetadataPayload struct {
	Kind        string               `json:"kind"`
	Version     int                  `json:"version"`
	SubmittedAt string               `json:"submittedAt"`
	Reporter    dto.ResidentReporter `json:"reporter"`
	Message     *string              `json:"message,omitempty"`
	Attachments []AttachmentSummary  `json:"attachments,omitempty"`
}

type ResidentMetadata struct {
	IsStructured     bool                  `json:"isStructured"`
	Reporter         *dto.ResidentReporter `json:"reporter,omitempty"`
	Message          string                `json:"message"`
	AttachmentsCount int                   `json:"attachmentsCount"`
	SubmittedAt      string                `json:"submittedAt,omitempty"`
	RawNotes         string                `json:"rawNotes"`
}

var (
	videoURLPattern = regexp.MustCompile(`\.(mp4|mov|avi|webm|mkv)(\?|$)`)
	imageURLPattern = regexp.MustCompile(`\.(png|jpe?g|gif|webp|bmp|svg)(\?|$)`)
)

// Decode classifies a single evidence string. It never fails: anything not
// recognized as media is plain text.
func Decode(raw string) Entry {
	if raw == "" {
		return Entry{Kind: KindText, Raw: raw}
	}

	if media, ok := decodeMediaPayload(raw); ok {
		return Entry{Kind: KindStructuredMedia, Raw: raw, Media: media}
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "data:image/"):
		return Entry{Kind: KindImage, Raw: raw, Media: &Attachment{
			ID: uuid.NewString(), Name: "Resident Image", Type: MediaImage, URL: raw,
		}}
	case strings.HasPrefix(lower, "data:video/"):
		return Entry{Kind: KindVideo, Raw: raw, Media: &Attachment{
			ID: uuid.NewString(), Name: "Resident Video", Type: MediaVideo, URL: raw,
		}}
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		if videoURLPattern.MatchString(lower) {
			return Entry{Kind: KindVideo, Raw: raw, Media: &Attachment{
				ID: uuid.NewString(), Name: "Resident Attachment", Type: MediaVideo, URL: raw,
			}}
		}
		if imageURLPattern.MatchString(lower) {
			return Entry{Kind: KindImage, Raw: raw, Media: &Attachment{
				ID: uuid.NewString(), Name: "Resident Attachment", Type: MediaImage, URL: raw,
			}}
		}
	}

	return Entry{Kind: KindText, Raw: raw}
}

func decodeMediaPayload(raw string) (*Attachment, bool) {
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return nil, false
	}

	var payload struct {
		Kind    string          `json:"kind"`
		ID      json.RawMessage `json:"id"`
		Name    json.RawMessage `json:"name"`
		Type    json.RawMessage `json:"type"`
		DataURL json.RawMessage `json:"dataUrl"`
		Size    json.RawMessage `json:"size"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil || payload.Kind != MediaKind {
		return nil, false
	}

	var dataURL string
	if err := json.Unmarshal(payload.DataURL, &dataURL); err != nil {
		return nil, false
	}

	att := &Attachment{
		ID:   looseString(payload.ID),
		Name: looseString(payload.Name),
		Type: MediaImage,
		URL:  dataURL,
		Size: looseSize(payload.Size),
	}
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	if att.Name == "" {
		att.Name = "Resident Attachment"
	}
	if looseString(payload.Type) == string(MediaVideo) {
		att.Type = MediaVideo
	}
	return att, true
}

// looseString reads a JSON string or number as text; anything else is "".
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// looseSize accepts a byte count as a JSON number or numeric string.
func looseSize(raw json.RawMessage) *int64 {
	text := looseString(raw)
	if text == "" {
		return nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || n < 0 {
		return nil
	}
	size := int64(n)
	return &size
}

// DecodeAll decodes every non-empty entry in order.
func DecodeAll(entries []string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, raw := range entries {
		if raw == "" {
			continue
		}
		out = append(out, Decode(raw))
	}
	return out
}

// Parse splits evidence into media attachments and plain text lines.
func Parse(entries []string) Buckets {
	buckets := Buckets{Media: []Attachment{}, Text: []string{}}
	for _, e := range DecodeAll(entries) {
		if e.IsMedia() {
			buckets.Media = append(buckets.Media, *e.Media)
		} else {
			buckets.Text = append(buckets.Text, e.Raw)
		}
	}
	return buckets
}

// ParseResidentMetadata surfaces the structured submission block in notes,
// or treats the notes as free text.
func ParseResidentMetadata(notes string) ResidentMetadata {
	if notes == "" {
		return ResidentMetadata{}
	}

	if strings.HasPrefix(strings.TrimSpace(notes), "{") {
		var payload struct {
			Kind        string                `json:"kind"`
			SubmittedAt string                `json:"submittedAt"`
			Reporter    *dto.ResidentReporter `json:"reporter"`
			Message     *string               `json:"message"`
			Attachments json.RawMessage       `json:"attachments"`
		}
		if err := json.Unmarshal([]byte(notes), &payload); err == nil && payload.Kind == MetadataKind {
			reporter := payload.Reporter
			if reporter == nil {
				reporter = &dto.ResidentReporter{}
			}
			message := ""
			if payload.Message != nil {
				message = *payload.Message
			}
			return ResidentMetadata{
				IsStructured:     true,
				Reporter:         reporter,
				Message:          message,
				AttachmentsCount: countArray(payload.Attachments),
				SubmittedAt:      payload.SubmittedAt,
				RawNotes:         message,
			}
		}
	}

	return ResidentMetadata{
		IsStructured: false,
		Message:      notes,
		RawNotes:     notes,
	}
}

func countArray(raw json.RawMessage) int {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0
	}
	return len(items)
}

// NewMediaPayload wraps an uploaded data URL. A missing id gets a fresh uuid.
func NewMediaPayload(u dto.MediaUpload) MediaPayload {
	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	mediaType := MediaImage
	if strings.EqualFold(u.Type, string(MediaVideo)) {
		mediaType = MediaVideo
	}
	return MediaPayload{
		Kind:    MediaKind,
		Version: 1,
		ID:      id,
		Name:    u.Name,
		Type:    mediaType,
		DataURL: u.DataURL,
		Size:    u.Size,
	}
}

func SerializeMedia(p MediaPayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p MediaPayload) Summary() AttachmentSummary {
	return AttachmentSummary{ID: p.ID, Name: p.Name, Type: p.Type, Size: p.Size}
}

// BuildResidentMetadata serializes the structured notes block. A zero
// submittedAt is replaced with the current time.
func BuildResidentMetadata(reporter *dto.ResidentReporter, message *string, attachments []AttachmentSummary, submittedAt time.Time) (string, error) {
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	payload := MetadataPayload{
		Kind:        MetadataKind,
		Version:     1,
		SubmittedAt: submittedAt.UTC().Format(time.RFC3339),
		Message:     message,
		Attachments: attachments,
	}
	if reporter != nil {
		payload.Reporter = *reporter
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
