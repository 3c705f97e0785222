package cars

import (
	"time"

	"github.com/JaimeStill/webcarros/pkg/decode"
	"github.com/JaimeStill/webcarros/pkg/docstore"
)

type record struct {
	Name          string  `json:"name"`
	Model         string  `json:"model"`
	Year          string  `json:"year"`
	KM            string  `json:"km"`
	Price         Price   `json:"price"`
	City          string  `json:"city"`
	Whatsapp      string  `json:"whatsapp"`
	Description   string  `json:"description"`
	Owner         string  `json:"owner"`
	UID           string  `json:"uid"`
	CreatedAt     string  `json:"createdAt"`
	Images        []Image `json:"images"`
	SubmissionKey string  `json:"submissionKey"`
}

func fromDocument(doc docstore.Document) (Car, error) {
	rec, err := decode.FromMap[record](doc.Fields)
	if err != nil {
		return Car{}, err
	}

	created, err := time.Parse(docstore.TimestampLayout, rec.CreatedAt)
	if err != nil {
		created = doc.CreatedAt
	}

	images := rec.Images
	if images == nil {
		images = []Image{}
	}

	return Car{
		ID:            doc.ID,
		Name:          rec.Name,
		Model:         rec.Model,
		Year:          rec.Year,
		KM:            rec.KM,
		Price:         rec.Price,
		City:          rec.City,
		Whatsapp:      rec.Whatsapp,
		Description:   rec.Description,
		Owner:         rec.Owner,
		UID:           rec.UID,
		CreatedAt:     created,
		Images:        images,
		SubmissionKey: rec.SubmissionKey,
	}, nil
}

// summary reduces a listing to the fields shown on listing cards.
func (c Car) summary() Car {
	return Car{
		ID:        c.ID,
		Name:      c.Name,
		Year:      c.Year,
		KM:        c.KM,
		City:      c.City,
		Price:     c.Price,
		Images:    c.Images,
		UID:       c.UID,
		CreatedAt: c.CreatedAt,
	}
}

func newFields(f Form, owner, uid string, images []Image) docstore.Fields {
	refs := make([]map[string]any, len(images))
	for i, img := range images {
		refs[i] = map[string]any{"name": img.Name, "uid": img.UID, "url": img.URL}
	}

	fields := docstore.Fields{
		"name":        upper(f.Name),
		"model":       f.Model,
		"year":        f.Year,
		"km":          f.KM,
		"price":       string(f.Price),
		"city":        f.City,
		"whatsapp":    f.Whatsapp,
		"description": f.Description,
		"createdAt":   docstore.ServerTimestamp,
		"owner":       owner,
		"uid":         uid,
		"images":      refs,
	}
	if f.SubmissionKey != "" {
		fields["submissionKey"] = f.SubmissionKey
	}
	return fields
}
