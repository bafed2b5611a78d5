package model

import "testing"

func TestParseSubmissionKind(t *testing.T) {
	tests := []struct {
		in      string
		want    SubmissionKind
		wantErr bool
	}{
		{in: "basic", want: KindBasic},
		{in: "identity", want: KindWithIdentityImage},
		{in: "", want: KindWithIdentityImage},
		{in: "premium", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseSubmissionKind(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSubmissionKind(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSubmissionKind(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSubmissionKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSubmissionKind_RequiresImage(t *testing.T) {
	if KindBasic.RequiresImage() {
		t.Error("basic kind should not require an image")
	}
	if !KindWithIdentityImage.RequiresImage() {
		t.Error("identity kind should require an image")
	}
}
