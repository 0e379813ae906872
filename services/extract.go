package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/vansh3175/FlashNotes/models"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// DetectInputType maps the uploaded file's declared content type and
// extension to a lecture input type. Runs before any I/O so unsupported
// uploads are rejected without touching disk.
func DetectInputType(filename, contentType string) (models.InputType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case contentType == "application/pdf" || ext == ".pdf":
		return models.InputTypePDF, nil
	case ext == ".pptx":
		return models.InputTypePPTX, nil
	case ext == ".docx" || strings.Contains(contentType, "officedocument"):
		return models.InputTypeDOCX, nil
	case strings.HasPrefix(contentType, "audio/") || ext == ".mp3" || ext == ".wav":
		return models.InputTypeAudio, nil
	default:
		return "", ErrUnsupportedType
	}
}

// ExtractText turns an uploaded file into plain text according to its input
// type. Audio goes through Speech-to-Text, everything else is parsed locally.
// Whether the result is blank is for the caller to judge.
func ExtractText(fileHeader *multipart.FileHeader, inputType models.InputType) (string, error) {
	switch inputType {
	case models.InputTypePDF:
		f, err := fileHeader.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		return ExtractTextFromPDF(f)

	case models.InputTypeDOCX:
		return ExtractTextFromDOCX(fileHeader)

	case models.InputTypePPTX:
		return ExtractTextFromPPTX(fileHeader)

	case models.InputTypeAudio:
		f, err := fileHeader.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", err
		}
		return TranscribeAudio(data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)

	default:
		return "", ErrUnsupportedType
	}
}

// ExtractTextFromPDF reads the text layer page by page. Pages without a text
// layer (or that fail to parse) contribute nothing; there is no OCR.
func ExtractTextFromPDF(file multipart.File) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", fmt.Errorf("read PDF: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("open PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if textBuilder.Len() > 0 {
			textBuilder.WriteString(" ")
		}
		textBuilder.WriteString(content)
	}

	return textBuilder.String(), nil
}

// ExtractTextFromDOCX unpacks the document (a .docx is a zip) and collects
// the <w:t> text runs of word/document.xml.
func ExtractTextFromDOCX(fileHeader *multipart.FileHeader) (string, error) {
	tmpPath, cleanup, err := saveToScratchFile(fileHeader, "upload-*.docx")
	if err != nil {
		return "", err
	}
	defer cleanup()

	r, err := zip.OpenReader(tmpPath)
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("docx has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var buf strings.Builder
	if err := collectTextElements(rc, "t", &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// ExtractTextFromPPTX unpacks the deck and collects the <a:t> text runs of
// every ppt/slides/slideN.xml, in slide order. Text boxes are ordinary text
// runs in the slide XML, so they come along for free.
func ExtractTextFromPPTX(fileHeader *multipart.FileHeader) (string, error) {
	tmpPath, cleanup, err := saveToScratchFile(fileHeader, "upload-*.pptx")
	if err != nil {
		return "", err
	}
	defer cleanup()

	r, err := zip.OpenReader(tmpPath)
	if err != nil {
		return "", fmt.Errorf("open pptx archive: %w", err)
	}
	defer r.Close()

	var slides []*zip.File
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].Name < slides[j].Name })

	var buf strings.Builder
	for _, slide := range slides {
		rc, err := slide.Open()
		if err != nil {
			return "", err
		}
		err = collectTextElements(rc, "t", &buf)
		rc.Close()
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

// collectTextElements streams an OOXML part and appends the character data of
// every element with the given local name, space separated.
func collectTextElements(r io.Reader, local string, buf *strings.Builder) error {
	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == local {
			var text string
			if err := decoder.DecodeElement(&text, &se); err == nil {
				buf.WriteString(text + " ")
			}
		}
	}
}

// saveToScratchFile spools the upload to a temp file for parsers that need a
// path on disk. The returned cleanup removes the file on every exit path.
func saveToScratchFile(fileHeader *multipart.FileHeader, pattern string) (string, func(), error) {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}

	src, err := fileHeader.Open()
	if err != nil {
		cleanup()
		return "", nil, err
	}
	defer src.Close()

	if _, err := io.Copy(tmpFile, src); err != nil {
		cleanup()
		return "", nil, err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", nil, err
	}

	return tmpFile.Name(), func() { os.Remove(tmpFile.Name()) }, nil
}
