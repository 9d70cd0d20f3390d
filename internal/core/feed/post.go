package feed

import (
	"strconv"
	"strings"

	"Vigora/internal/origin"
)

// Author is a denormalized snapshot of the poster captured when the post was
// created or fetched. It is not a live reference: a later profile rename does
// not update posts already in the collection.
type Author struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
	Avatar string `json:"avatar,omitempty"`
}

// Post is a single feed item. At most one of Image and Video is set.
// Liked is viewer-local state, never persisted and reset on every full fetch.
type Post struct {
	ID           string `json:"id"`
	Author       Author `json:"author"`
	Image        string `json:"image,omitempty"`
	Video        string `json:"video,omitempty"`
	Caption      string `json:"caption"`
	LikeCount    int    `json:"likeCount"`
	CommentCount int    `json:"commentCount"`
	Liked        bool   `json:"liked"`
	Sponsored    bool   `json:"sponsored"`
}

// HasVideo reports whether the post carries video media.
func (p Post) HasVideo() bool {
	return p.Video != ""
}

// postFromRaw maps an origin record into a Post owned by the viewer. Posts
// fetched by username all belong to that user, so the viewer snapshot becomes
// the author.
func postFromRaw(raw origin.RawPost, viewer Author) Post {
	caption := raw.Titulo
	if raw.Descricao != "" {
		if caption != "" {
			caption += "\n"
		}
		caption += raw.Descricao
	}

	return Post{
		ID:      strconv.FormatInt(raw.ID, 10),
		Author:  viewer,
		Image:   unwrapQuoted(raw.Imagem),
		Caption: caption,
	}
}

// unwrapQuoted strips one layer of JSON string quoting from values the origin
// double-encoded, e.g. the six characters `"\"x\""` decode to the JSON string
// `"x"`, whose payload is the URL x. Plain values pass through unchanged, and
// applying the function twice is the same as applying it once.
func unwrapQuoted(s string) string {
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return s
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}
	// Quoted but not strictly parseable (stray escapes); fall back to
	// trimming the outer quotes so the URL is still usable.
	return strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`)
}
