package object

import (
	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/wood"
)

// TagPost is the provider key of Post.
const TagPost = "post"

// Post is a piece of authored text, optionally replying to another object.
type Post struct {
	Lineage
	Author     oid.OID
	Title      string
	Body       string
	ReplyingTo *oid.OID
}

func (*Post) TypeTag() string { return TagPost }

func (p *Post) References() []Reference {
	refs := append(p.references(), Reference{Kind: RefAuthor, Target: p.Author})
	if p.ReplyingTo != nil {
		refs = append(refs, Reference{Kind: RefReplyingTo, Target: *p.ReplyingTo})
	}
	return refs
}

func (p *Post) Wood() *wood.Wood {
	items := []any{TagPost}
	for _, w := range p.woods() {
		items = append(items, w)
	}
	items = append(items, wood.Woods("author", p.Author.Wood()))
	if p.Title != "" {
		items = append(items, wood.Woods("title", p.Title))
	}
	items = append(items, wood.Woods("body", p.Body))
	if p.ReplyingTo != nil {
		items = append(items, wood.Woods("replying_to", p.ReplyingTo.Wood()))
	}
	return wood.Woods(items...)
}

// DecodePost decodes a post record.
func DecodePost(w *wood.Wood, id oid.OID) (*Post, error) {
	l, err := decodeLineage(w, id)
	if err != nil {
		return nil, decodeErr(TagPost, w, err)
	}
	author, err := idField(w, "author")
	if err != nil {
		return nil, decodeErr(TagPost, w, err)
	}
	title, err := optText(w, "title")
	if err != nil {
		return nil, decodeErr(TagPost, w, err)
	}
	body, err := w.FindText("body")
	if err != nil {
		return nil, decodeErr(TagPost, w, err)
	}
	reply, err := optIDField(w, "replying_to")
	if err != nil {
		return nil, decodeErr(TagPost, w, err)
	}
	return &Post{Lineage: l, Author: author, Title: title, Body: body, ReplyingTo: reply}, nil
}
