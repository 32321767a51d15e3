package media

import "fmt"

// BindingKind discriminates what a media slot holds.
type BindingKind string

const (
	BindingNone  BindingKind = "none"
	BindingImage BindingKind = "image"
	BindingVideo BindingKind = "video"
)

// Binding is the value a content draft stores per media slot. It is a
// discriminated union: exactly the variant matching Kind is populated.
type Binding struct {
	Kind  BindingKind `json:"kind"`
	Image *ImageAsset `json:"image,omitempty"`
	Video *VideoAsset `json:"video,omitempty"`
}

// NoBinding returns the empty slot value.
func NoBinding() Binding {
	return Binding{Kind: BindingNone}
}

// BindImage wraps an image asset.
func BindImage(asset ImageAsset) Binding {
	return Binding{Kind: BindingImage, Image: &asset}
}

// BindVideo wraps a video asset.
func BindVideo(asset VideoAsset) Binding {
	return Binding{Kind: BindingVideo, Video: &asset}
}

// IsBound reports whether the slot holds an asset.
func (b Binding) IsBound() bool {
	return b.Kind == BindingImage || b.Kind == BindingVideo
}

// Validate checks that exactly the variant matching Kind is set and that
// the contained asset is internally consistent.
func (b Binding) Validate() error {
	switch b.Kind {
	case BindingNone, "":
		if b.Image != nil || b.Video != nil {
			return fmt.Errorf("empty binding carries an asset")
		}
	case BindingImage:
		if b.Image == nil || b.Video != nil {
			return fmt.Errorf("image binding is malformed")
		}
		if b.Image.URL == "" || b.Image.StorageKey == "" {
			return fmt.Errorf("image binding is missing url or storage key")
		}
	case BindingVideo:
		if b.Video == nil || b.Image != nil {
			return fmt.Errorf("video binding is malformed")
		}
		if err := b.Video.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown binding kind %q", b.Kind)
	}
	return nil
}

// RemovalKey returns the opaque handle needed to delete the remote
// object or job, and whether one exists.
func (b Binding) RemovalKey() (string, bool) {
	switch b.Kind {
	case BindingImage:
		return b.Image.StorageKey, true
	case BindingVideo:
		return b.Video.JobID, true
	}
	return "", false
}
