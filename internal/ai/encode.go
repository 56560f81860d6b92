package ai

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/abhishekkrthakur/aiaio/internal/store"
)

// ContentCategory classifies an attachment by its MIME type's primary
// category for wire-part dispatch.
type ContentCategory int

const (
	CategoryImage ContentCategory = iota
	CategoryVideo
	CategoryAudio
	CategoryDocument
)

func categoryOf(mimeType string) ContentCategory {
	primary, _, _ := strings.Cut(mimeType, "/")
	switch primary {
	case "image":
		return CategoryImage
	case "video":
		return CategoryVideo
	case "audio":
		return CategoryAudio
	}
	return CategoryDocument
}

// BuildMessages translates stored history into wire turns. Attachment bytes
// are inlined as base64 data URIs; there is no out-of-band upload step. An
// unreadable attachment fails the whole translation.
func BuildMessages(history []store.Message) ([]Message, error) {
	out := make([]Message, 0, len(history))
	for _, msg := range history {
		if len(msg.Attachments) == 0 {
			out = append(out, Message{Role: string(msg.Role), Text: msg.Content})
			continue
		}

		var parts []Part
		if msg.Content != "" {
			parts = append(parts, Part{Kind: PartText, Text: msg.Content})
		}
		for _, att := range msg.Attachments {
			part, err := attachmentPart(att)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
		out = append(out, Message{Role: string(msg.Role), Parts: parts})
	}
	return out, nil
}

func attachmentPart(att store.Attachment) (Part, error) {
	data, err := os.ReadFile(att.FilePath)
	if err != nil {
		return Part{}, fmt.Errorf("read attachment %s: %w", att.AttachmentID, err)
	}

	mimeType := att.FileType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	uri := DataURI(mimeType, data)

	switch categoryOf(mimeType) {
	case CategoryImage:
		return Part{Kind: PartImageURL, URL: uri}, nil
	case CategoryVideo:
		return Part{Kind: PartVideoURL, URL: uri}, nil
	case CategoryAudio:
		return Part{Kind: PartInputAudio, URL: uri}, nil
	case CategoryDocument:
		// Documents travel through the image channel with their real MIME
		// type; many endpoints only accept document bytes this way.
		return Part{Kind: PartImageURL, URL: uri}, nil
	}
	return Part{}, fmt.Errorf("unhandled content category for %q", mimeType)
}

// DataURI encodes raw bytes as a data URI for the given MIME type.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
