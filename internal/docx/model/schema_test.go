package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSymbolKey(t *testing.T) {
	tests := []struct {
		name      string
		language  string
		projectID string
		localID   string
		want      string
	}{
		{
			name:      "csharp member",
			language:  "csharp",
			projectID: "p1",
			localID:   "T:Acme.Foo",
			want:      "csharp|p1|T:Acme.Foo",
		},
		{
			name:      "rust path",
			language:  "rust",
			projectID: "p1",
			localID:   "crate::Foo",
			want:      "rust|p1|crate::Foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeSymbolKey(tt.language, tt.projectID, tt.localID))
		})
	}
}

func TestMakeCsharpSymbolKey(t *testing.T) {
	assert.Equal(t, "csharp|p1|T:Acme.Foo", MakeCsharpSymbolKey("p1", "T:Acme.Foo"))
}

func TestMakeRustSymbolKey(t *testing.T) {
	assert.Equal(t, "rust|p1|crate::bar", MakeRustSymbolKey("p1", "crate::bar"))
}

func TestRecordRef(t *testing.T) {
	assert.Equal(t, "symbol:csharp|p1|T:Acme.Foo", RecordRef(TableSymbol, "csharp|p1|T:Acme.Foo"))
}

func TestMakeIngestID(t *testing.T) {
	assert.Equal(t, "p1::r", MakeIngestID("p1", "r"))
}
