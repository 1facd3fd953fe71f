package contenttypes

import (
	"fmt"

	"github.com/goliatone/go-docrules/pkg/model"
	"github.com/goliatone/go-docrules/pkg/schema"
)

const placeholder = "—"

// Preparers returns the named prepare functions the embedded definitions
// reference.
func Preparers() schema.Preparers {
	return schema.Preparers{
		"project":         PrepareProject,
		"credit":          PrepareCredit,
		"galleryVideo":    PrepareGalleryVideo,
		"galleryVideoUrl": PrepareGalleryVideoURL,
	}
}

// PrepareProject formats the project summary:
//
//	<type> • <mode> → <destination> • <visibility>
//
// Missing scalars render as "—" and visibility falls back to "public".
func PrepareProject(sel model.Selection) model.Preview {
	mode := sel.String("mode")

	var dest string
	switch mode {
	case "internal":
		dest = "/Work/" + sel.Or("slug", placeholder)
	case "external":
		dest = sel.Or("url", placeholder)
	default:
		dest = "No link"
	}

	return model.Preview{
		Title: sel.String("title"),
		Subtitle: fmt.Sprintf("%s • %s → %s • %s",
			sel.Or("type", placeholder),
			sel.Or("mode", placeholder),
			dest,
			sel.Or("visibility", "public"),
		),
		Media: sel["media"],
	}
}

// PrepareCredit titles a credit by the person and subtitles it by role.
func PrepareCredit(sel model.Selection) model.Preview {
	return model.Preview{
		Title:    sel.Or("name", placeholder),
		Subtitle: sel.Or("role", placeholder),
	}
}

// PrepareGalleryVideo reports whether the uploaded video has a file.
func PrepareGalleryVideo(sel model.Selection) model.Preview {
	subtitle := "Missing file"
	if ref, ok := sel["asset"].AssetRef(); ok && ref.ID != "" {
		subtitle = "Uploaded"
	}
	return model.Preview{
		Title:    sel.Or("caption", "Video"),
		Subtitle: subtitle,
	}
}

// PrepareGalleryVideoURL shows the caption and the linked URL.
func PrepareGalleryVideoURL(sel model.Selection) model.Preview {
	return model.Preview{
		Title:    sel.Or("caption", "Linked Video"),
		Subtitle: sel.Or("url", "No URL"),
	}
}
