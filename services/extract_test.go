package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vansh3175/FlashNotes/models"
)

func makeFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	body := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	for _, p := range paragraphs {
		body += "<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>"
	}
	body += `</w:body></w:document>`

	_, err = f.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildPptx(t *testing.T, slides ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, text := range slides {
		f, err := zw.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i+1))
		require.NoError(t, err)
		body := `<?xml version="1.0" encoding="UTF-8"?><p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildPDF(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := make([]int, 6)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>")
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	writeObj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	writeObj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	xrefPos := buf.Len()
	buf.WriteString("xref\n0 6\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefPos)
	return buf.Bytes()
}

func TestDetectInputType(t *testing.T) {
	cases := []struct {
		filename    string
		contentType string
		want        models.InputType
		wantErr     bool
	}{
		{"notes.pdf", "application/pdf", models.InputTypePDF, false},
		{"notes.pdf", "application/octet-stream", models.InputTypePDF, false},
		{"deck.pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation", models.InputTypePPTX, false},
		{"doc.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", models.InputTypeDOCX, false},
		{"unknown.bin", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", models.InputTypeDOCX, false},
		{"lecture.mp3", "audio/mpeg", models.InputTypeAudio, false},
		{"lecture.wav", "application/octet-stream", models.InputTypeAudio, false},
		{"table.xlsx", "application/vnd.ms-excel", "", true},
		{"page.html", "text/html", "", true},
	}

	for _, tc := range cases {
		got, err := DetectInputType(tc.filename, tc.contentType)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedType, tc.filename)
			continue
		}
		require.NoError(t, err, tc.filename)
		assert.Equal(t, tc.want, got, tc.filename)
	}
}

func TestExtractTextFromDOCX(t *testing.T) {
	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	fh := makeFileHeader(t, "notes.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		buildDocx(t, "Hello", "World"))

	text, err := ExtractTextFromDOCX(fh)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)

	// the scratch file must be gone once the call returns
	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractTextFromDOCXCleanupOnFailure(t *testing.T) {
	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	fh := makeFileHeader(t, "broken.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		[]byte("this is not a zip"))

	_, err := ExtractTextFromDOCX(fh)
	require.Error(t, err)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractTextFromPPTX(t *testing.T) {
	fh := makeFileHeader(t, "deck.pptx",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		buildPptx(t, "First slide", "Second slide"))

	text, err := ExtractTextFromPPTX(fh)
	require.NoError(t, err)
	assert.Equal(t, "First slide Second slide", text)
}

func TestExtractTextFromPDF(t *testing.T) {
	content := buildPDF(t, "The mitochondria is the powerhouse of the cell.")
	fh := makeFileHeader(t, "bio.pdf", "application/pdf", content)

	f, err := fh.Open()
	require.NoError(t, err)
	defer f.Close()

	text, err := ExtractTextFromPDF(f)
	require.NoError(t, err)
	assert.Contains(t, text, "mitochondria")
}

func TestExtractTextFromPDFGarbage(t *testing.T) {
	fh := makeFileHeader(t, "bad.pdf", "application/pdf", []byte("definitely not a pdf"))

	f, err := fh.Open()
	require.NoError(t, err)
	defer f.Close()

	_, err = ExtractTextFromPDF(f)
	assert.Error(t, err)
}

func TestExtractTextAudioUsesTranscriber(t *testing.T) {
	orig := TranscribeAudio
	TranscribeAudio = func(audio []byte, contentType, filename string) (string, error) {
		assert.Equal(t, []byte("fake-audio"), audio)
		return "transcribed words", nil
	}
	t.Cleanup(func() { TranscribeAudio = orig })

	fh := makeFileHeader(t, "lecture.mp3", "audio/mpeg", []byte("fake-audio"))

	text, err := ExtractText(fh, models.InputTypeAudio)
	require.NoError(t, err)
	assert.Equal(t, "transcribed words", text)
}
