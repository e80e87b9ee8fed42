package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// multipartOverhead is the allowance on top of the file limit for part
// headers and boundaries
const multipartOverhead = 1 << 20

// limitBody caps the request body for an upload of files of at most
// maxFileBytes each
func limitBody(w http.ResponseWriter, r *http.Request, maxFileBytes int64, files int) {
	if maxFileBytes <= 0 {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes*int64(files)+multipartOverhead)
}

// readFormFile reads one multipart file field fully into memory
func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", err
		}
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", apierrors.ErrValidation(field, fmt.Sprintf("%s file is required", field))
		}
		return nil, "", apierrors.InvalidRequestWithError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", err
		}
		return nil, "", apierrors.NewParsingError(field+" upload could not be read", err).
			WithContext("field", field)
	}
	return data, filepath.Base(header.Filename), nil
}

// parseFormat accepts the declared format tag plus common file-extension
// aliases. An empty value means "guess from the filename".
func parseFormat(value string) domain.Format {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return ""
	case "csv", "txt", "text":
		return domain.FormatCSV
	case "xlsx", "xlsm", "excel", "spreadsheet":
		return domain.FormatSpreadsheet
	default:
		return domain.Format(value)
	}
}
