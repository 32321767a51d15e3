package media

import "testing"

func TestBindingValidate(t *testing.T) {
	tests := []struct {
		name    string
		binding Binding
		wantErr bool
	}{
		{
			name:    "empty binding",
			binding: NoBinding(),
		},
		{
			name:    "zero value binding",
			binding: Binding{},
		},
		{
			name:    "image binding",
			binding: BindImage(ImageAsset{URL: "https://cdn.example.com/images/a.jpg", StorageKey: "images/a.jpg"}),
		},
		{
			name:    "image binding missing url",
			binding: BindImage(ImageAsset{StorageKey: "images/a.jpg"}),
			wantErr: true,
		},
		{
			name:    "image binding missing key",
			binding: BindImage(ImageAsset{URL: "https://cdn.example.com/images/a.jpg"}),
			wantErr: true,
		},
		{
			name:    "pending video binding",
			binding: BindVideo(VideoAsset{JobID: "job-1", Status: VideoStatusPreparing}),
		},
		{
			name:    "ready video binding",
			binding: BindVideo(VideoAsset{JobID: "job-1", PlayableID: "pl-1", Status: VideoStatusReady}),
		},
		{
			name:    "ready video without playable id",
			binding: BindVideo(VideoAsset{JobID: "job-1", Status: VideoStatusReady}),
			wantErr: true,
		},
		{
			name:    "pending video with stray playable id",
			binding: BindVideo(VideoAsset{JobID: "job-1", PlayableID: "pl-1", Status: VideoStatusPreparing}),
			wantErr: true,
		},
		{
			name:    "empty binding carrying an asset",
			binding: Binding{Kind: BindingNone, Image: &ImageAsset{URL: "x", StorageKey: "y"}},
			wantErr: true,
		},
		{
			name:    "image kind with video payload",
			binding: Binding{Kind: BindingImage, Video: &VideoAsset{JobID: "job-1"}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			binding: Binding{Kind: "audio"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.binding.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBindingRemovalKey(t *testing.T) {
	if key, ok := NoBinding().RemovalKey(); ok || key != "" {
		t.Fatalf("empty binding should have no removal key, got %q", key)
	}

	img := BindImage(ImageAsset{URL: "https://cdn.example.com/images/a.jpg", StorageKey: "images/a.jpg"})
	if key, ok := img.RemovalKey(); !ok || key != "images/a.jpg" {
		t.Fatalf("image removal key = %q, %v", key, ok)
	}

	vid := BindVideo(VideoAsset{JobID: "job-9", Status: VideoStatusPreparing})
	if key, ok := vid.RemovalKey(); !ok || key != "job-9" {
		t.Fatalf("video removal key = %q, %v", key, ok)
	}
}

func TestBindingIsBound(t *testing.T) {
	if NoBinding().IsBound() {
		t.Fatal("empty binding reported bound")
	}
	if !BindImage(ImageAsset{URL: "u", StorageKey: "k"}).IsBound() {
		t.Fatal("image binding reported unbound")
	}
	if !BindVideo(VideoAsset{JobID: "j", Status: VideoStatusPreparing}).IsBound() {
		t.Fatal("video binding reported unbound")
	}
}

func TestVideoStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   VideoStatus
		terminal bool
	}{
		{VideoStatusAwaitingUpload, false},
		{VideoStatusPreparing, false},
		{VideoStatusReady, true},
		{VideoStatusErrored, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}
