package media

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ThumbnailFit controls how a thumbnail is cropped to the requested box.
type ThumbnailFit string

const (
	ThumbnailFitPreserve ThumbnailFit = "preserve"
	ThumbnailFitCrop     ThumbnailFit = "crop"
	ThumbnailFitPad      ThumbnailFit = "pad"
)

// ThumbnailParams select a frame and output geometry for a thumbnail.
type ThumbnailParams struct {
	TimeSeconds float64
	Width       int
	Height      int
	Fit         ThumbnailFit
}

// PlaybackURL builds the HLS playback address for a playable rendition.
// It is a pure function of the playable id, never a remote call.
func PlaybackURL(streamBase, playableID string) string {
	return fmt.Sprintf("%s/%s.m3u8", strings.TrimSuffix(streamBase, "/"), playableID)
}

// ThumbnailURL builds a parameterized still-frame address for a playable
// rendition. Zero-valued params are omitted from the query.
func ThumbnailURL(imageBase, playableID string, params ThumbnailParams) string {
	base := fmt.Sprintf("%s/%s/thumbnail.jpg", strings.TrimSuffix(imageBase, "/"), playableID)

	query := url.Values{}
	if params.TimeSeconds > 0 {
		query.Set("time", strconv.FormatFloat(params.TimeSeconds, 'f', -1, 64))
	}
	if params.Width > 0 {
		query.Set("width", strconv.Itoa(params.Width))
	}
	if params.Height > 0 {
		query.Set("height", strconv.Itoa(params.Height))
	}
	if params.Fit != "" {
		query.Set("fit_mode", string(params.Fit))
	}
	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}
