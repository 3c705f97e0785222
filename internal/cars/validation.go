package cars

import (
	"net/http"
	"regexp"
)

var whatsappPattern = regexp.MustCompile(`^\d{11,12}$`)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

const (
	msgNoImages         = "Envie pelo menos 1 imagem do carro!"
	msgUnsupportedImage = "Envie uma imagem JPEG ou PNG!"
)

// validate checks the trimmed form and image count and returns nil or a *ValidationError.
func validate(f Form, images int) error {
	verr := newValidationError()

	if images == 0 {
		verr.add("images", msgNoImages, ErrNoImages)
	}

	required := []struct {
		field, value, msg string
	}{
		{"name", f.Name, "O campo nome é obrigatório"},
		{"model", f.Model, "O campo modelo é obrigatório"},
		{"year", f.Year, "O ano do carro é obrigatório"},
		{"km", f.KM, "O KM do carro é obrigatório"},
		{"price", string(f.Price), "O preço do carro é obrigatório"},
		{"city", f.City, "O campo cidade é obrigatório"},
		{"whatsapp", f.Whatsapp, "O telefone é obrigatório"},
		{"description", f.Description, "A descrição é obrigatória"},
	}
	for _, r := range required {
		if r.value == "" {
			verr.add(r.field, r.msg, nil)
		}
	}

	if f.Whatsapp != "" && !whatsappPattern.MatchString(f.Whatsapp) {
		verr.add("whatsapp", "Numero de telefone invalido", nil)
	}

	if verr.empty() {
		return nil
	}
	return verr
}

// imageType returns the content type of an accepted upload. The declared type,
// when present, and the sniffed type must both be JPEG or PNG.
func imageType(u Upload) (string, bool) {
	if u.ContentType != "" && u.ContentType != "application/octet-stream" && !allowedImageTypes[u.ContentType] {
		return "", false
	}

	sniffed := http.DetectContentType(u.Data)
	if !allowedImageTypes[sniffed] {
		return "", false
	}
	return sniffed, true
}

func validateUploads(uploads []Upload) ([]string, error) {
	types := make([]string, len(uploads))
	for i, u := range uploads {
		ct, ok := imageType(u)
		if !ok {
			verr := newValidationError()
			verr.add("images", msgUnsupportedImage, ErrUnsupportedImage)
			return nil, verr
		}
		types[i] = ct
	}
	return types, nil
}
