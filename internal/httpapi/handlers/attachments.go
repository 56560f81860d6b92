package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/abhishekkrthakur/aiaio/internal/common"
	"github.com/abhishekkrthakur/aiaio/internal/store"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// safeFilename sanitizes an upload's name and stamps it to avoid collisions.
func safeFilename(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(filepath.Base(original), ext)
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	return fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext)
}

// saveUploads persists multipart files to the upload dir. Text files are
// additionally inlined into the message body so non-multimodal models can
// see their contents.
func (h *Handler) saveUploads(c *gin.Context) ([]store.AttachmentInput, string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all is fine; attachments are optional.
		return nil, "", nil
	}

	var (
		attachments []store.AttachmentInput
		inlined     strings.Builder
	)
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		contents, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, "", err
		}

		path := filepath.Join(h.UploadDir, safeFilename(fh.Filename))
		if err := os.WriteFile(path, contents, 0o644); err != nil {
			return nil, "", err
		}

		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		attachments = append(attachments, store.AttachmentInput{
			Name: fh.Filename,
			Path: path,
			Type: mimeType,
			Size: int64(len(contents)),
		})
		log.Printf("httpapi: saved uploaded file path=%s size=%d", path, len(contents))

		if utf8.Valid(contents) {
			fmt.Fprintf(&inlined, "\n\n--- File: %s ---\n%s", fh.Filename, contents)
		}
	}
	return attachments, inlined.String(), nil
}

// GetAttachment serves the raw file bytes with the original filename and
// MIME type.
func (h *Handler) GetAttachment(c *gin.Context) {
	att, err := h.Repo.GetAttachment(c.Request.Context(), c.Param("attachment_id"))
	if err != nil {
		common.FailErr(c, err)
		return
	}
	if _, err := os.Stat(att.FilePath); err != nil {
		common.Fail(c, http.StatusNotFound, 40401, "file not found")
		return
	}

	c.Header("Content-Type", att.FileType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))
	c.File(att.FilePath)
}
