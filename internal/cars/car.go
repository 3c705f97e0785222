// Package cars implements the listing workflows: query, creation with image
// upload, deletion, and image staging for the dashboard form.
package cars

import (
	"strings"
	"time"
)

// Collection holds one document per listing.
const Collection = "cars"

// Image references a stored photo. Name is the asset id and UID the owner id;
// together they form the blob key.
type Image struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
	URL  string `json:"url"`
}

// Key returns the blob key images/<uid>/<name>.
func (i Image) Key() string {
	return imageKey(i.UID, i.Name)
}

// Car is a listing. Name is stored upper-cased.
type Car struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Model         string    `json:"model,omitempty"`
	Year          string    `json:"year"`
	KM            string    `json:"km"`
	Price         Price     `json:"price"`
	City          string    `json:"city"`
	Whatsapp      string    `json:"whatsapp,omitempty"`
	Description   string    `json:"description,omitempty"`
	Owner         string    `json:"owner,omitempty"`
	UID           string    `json:"uid"`
	CreatedAt     time.Time `json:"createdAt"`
	Images        []Image   `json:"images"`
	SubmissionKey string    `json:"-"`
}

// Form contains the listing fields submitted by the dashboard.
type Form struct {
	Name        string `json:"name"`
	Model       string `json:"model"`
	Year        string `json:"year"`
	KM          string `json:"km"`
	Price       Price  `json:"price"`
	City        string `json:"city"`
	Whatsapp    string `json:"whatsapp"`
	Description string `json:"description"`

	// SubmissionKey identifies one form submission. Repeating a key returns
	// the listing it created instead of writing another.
	SubmissionKey string `json:"submissionKey,omitempty"`
}

// Upload is an image file received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateCommand contains a form plus the images to attach.
// Staged names refer to images already uploaded through UploadImage.
type CreateCommand struct {
	Form    Form
	Uploads []Upload
	Staged  []string
}

func (c CreateCommand) imageCount() int {
	return len(c.Uploads) + len(c.Staged)
}

func imageKey(uid, name string) string {
	return "images/" + uid + "/" + name
}

func (f Form) trimmed() Form {
	return Form{
		Name:          strings.TrimSpace(f.Name),
		Model:         strings.TrimSpace(f.Model),
		Year:          strings.TrimSpace(f.Year),
		KM:            strings.TrimSpace(f.KM),
		Price:         Price(strings.TrimSpace(string(f.Price))),
		City:          strings.TrimSpace(f.City),
		Whatsapp:      strings.TrimSpace(f.Whatsapp),
		Description:   strings.TrimSpace(f.Description),
		SubmissionKey: strings.TrimSpace(f.SubmissionKey),
	}
}
