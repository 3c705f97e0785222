package cars

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ParseCreateCommand reads the listing form, the "images" files, and the
// "staged" asset names from a multipart request.
func ParseCreateCommand(r *http.Request, maxUploadSize int64) (CreateCommand, error) {
	if err := parseMultipart(r, maxUploadSize); err != nil {
		return CreateCommand{}, err
	}

	cmd := CreateCommand{
		Form: Form{
			Name:          r.FormValue("name"),
			Model:         r.FormValue("model"),
			Year:          r.FormValue("year"),
			KM:            r.FormValue("km"),
			Price:         Price(r.FormValue("price")),
			City:          r.FormValue("city"),
			Whatsapp:      r.FormValue("whatsapp"),
			Description:   r.FormValue("description"),
			SubmissionKey: r.FormValue("submissionKey"),
		},
		Staged: r.MultipartForm.Value["staged"],
	}

	for _, fh := range r.MultipartForm.File["images"] {
		u, err := readUpload(fh, maxUploadSize)
		if err != nil {
			return CreateCommand{}, err
		}
		cmd.Uploads = append(cmd.Uploads, u)
	}
	return cmd, nil
}

// ParseUpload reads the single "image" file from a multipart request.
func ParseUpload(r *http.Request, maxUploadSize int64) (Upload, error) {
	if err := parseMultipart(r, maxUploadSize); err != nil {
		return Upload{}, err
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return Upload{}, stagedMissing()
	}
	return readUpload(files[0], maxUploadSize)
}

// maxFilesPerRequest bounds the request body at this many maximum-size files.
const maxFilesPerRequest = 10

// LimitBody caps the request body for a multipart listing submission.
func LimitBody(w http.ResponseWriter, r *http.Request, maxUploadSize int64) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize*maxFilesPerRequest)
}

func parseMultipart(r *http.Request, maxUploadSize int64) error {
	err := r.ParseMultipartForm(maxUploadSize)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.Is(err, multipart.ErrMessageTooLarge) || errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: %v", ErrImageTooLarge, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedRequest, err)
}

func readUpload(fh *multipart.FileHeader, maxUploadSize int64) (Upload, error) {
	if fh.Size > maxUploadSize {
		return Upload{}, ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > maxUploadSize {
		return Upload{}, ErrImageTooLarge
	}

	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
