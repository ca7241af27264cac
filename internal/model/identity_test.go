package model

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  IdentityContext
	}{
		{
			name:  "managed with dcid",
			query: "dcid=abc&allow-new-players=1",
			want:  IdentityContext{Mode: ModeManaged, DeviceConnectionID: "abc", AllowNewPlayers: true},
		},
		{
			name:  "managed with token alias",
			query: "token=xyz&logout=1",
			want:  IdentityContext{Mode: ModeManaged, DeviceConnectionID: "xyz", Logout: true},
		},
		{
			name:  "external with gcid",
			query: "url=https%3A%2F%2Fgame.example%2Fplay&gcid=g1",
			want:  IdentityContext{Mode: ModeExternal, RequestOrigin: "https://game.example/play", GameConnectionID: "g1"},
		},
		{
			name:  "external with id alias",
			query: "url=https%3A%2F%2Fgame.example&id=g2&allow-new-users=1",
			want:  IdentityContext{Mode: ModeExternal, RequestOrigin: "https://game.example", GameConnectionID: "g2", AllowNewPlayers: true},
		},
		{
			name:  "dcid wins over url",
			query: "dcid=abc&url=https%3A%2F%2Fgame.example&gcid=g1",
			want:  IdentityContext{Mode: ModeManaged, DeviceConnectionID: "abc"},
		},
		{
			name:  "direct",
			query: "",
			want:  IdentityContext{Mode: ModeDirectUnsupported},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParseIdentity(q))
		})
	}
}
