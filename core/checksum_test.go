package core

import (
	"strings"
	"testing"
)

func TestChecksumBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "empty input",
			data: []byte{},
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "known value",
			data: []byte("hello world"),
			want: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChecksumBytes(tt.data); got != tt.want {
				t.Errorf("ChecksumBytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChecksumBytes_Deterministic(t *testing.T) {
	data := []byte("financial report contents")
	first := ChecksumBytes(data)
	second := ChecksumBytes(data)

	if first != second {
		t.Errorf("ChecksumBytes not deterministic: %q != %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("checksum length = %d, want 64", len(first))
	}
}

func TestChecksumReader(t *testing.T) {
	got, err := ChecksumReader(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("ChecksumReader() error = %v", err)
	}
	if got != ChecksumBytes([]byte("hello world")) {
		t.Error("ChecksumReader should match ChecksumBytes for identical content")
	}
}

func TestChecksumReader_Nil(t *testing.T) {
	if _, err := ChecksumReader(nil); err == nil {
		t.Error("ChecksumReader(nil) should return an error")
	}
}

func TestChecksumString(t *testing.T) {
	if ChecksumString("abc") != ChecksumBytes([]byte("abc")) {
		t.Error("ChecksumString should match ChecksumBytes")
	}
}
