// Package display turns a form definition and one submission into the
// ordered tree of groups and responses that renderers walk.
package display

import (
	"encoding/json"
	"fmt"

	"formview/internal/attachment"
	"formview/internal/survey"
)

// GroupKind distinguishes the groups of a display tree.
type GroupKind string

const (
	KindRoot      GroupKind = "group_root"
	KindRepeat    GroupKind = "group_repeat"
	KindRegular   GroupKind = "group_regular"
	KindMatrix    GroupKind = "group_matrix"
	KindMatrixRow GroupKind = "group_matrix_row"
)

// Node is either a *Group or a *Response.
type Node interface {
	node()
}

// Group holds child groups and responses in display order. Name is nil
// only for the root.
type Group struct {
	Kind     GroupKind
	Label    *string
	Name     *string
	Children []Node
}

// Response is one answer. QuestionType is nil for supplemental entries
// and Value is nil when there is no answer.
type Response struct {
	QuestionType *survey.RowType
	Label        *string
	Name         string
	ListName     string
	Value        *string

	// Set for media questions: the matched attachment, or the placeholder
	// text shown when the file cannot be found.
	Attachment      *attachment.Attachment
	AttachmentError string
}

func (*Group) node()    {}
func (*Response) node() {}

func newGroup(kind GroupKind, label *string, name string) *Group {
	return &Group{Kind: kind, Label: label, Name: &name, Children: []Node{}}
}

func (g *Group) add(n Node) {
	g.Children = append(g.Children, n)
}

// Groups returns the direct child groups.
func (g *Group) Groups() []*Group {
	var out []*Group
	for _, c := range g.Children {
		if child, ok := c.(*Group); ok {
			out = append(out, child)
		}
	}
	return out
}

// Responses returns the direct child responses.
func (g *Group) Responses() []*Response {
	var out []*Response
	for _, c := range g.Children {
		if child, ok := c.(*Response); ok {
			out = append(out, child)
		}
	}
	return out
}

const (
	nodeGroup    = "group"
	nodeResponse = "response"
)

type groupJSON struct {
	Node     string            `json:"node"`
	Kind     GroupKind         `json:"type"`
	Label    *string           `json:"label"`
	Name     *string           `json:"name"`
	Children []json.RawMessage `json:"children"`
}

type responseJSON struct {
	Node            string                 `json:"node"`
	QuestionType    *survey.RowType        `json:"type"`
	Label           *string                `json:"label"`
	Name            string                 `json:"name"`
	ListName        string                 `json:"list_name,omitempty"`
	Value           *string                `json:"data"`
	Attachment      *attachment.Attachment `json:"attachment,omitempty"`
	AttachmentError string                 `json:"attachment_error,omitempty"`
}

// MarshalJSON tags the group so trees can be decoded back.
func (g *Group) MarshalJSON() ([]byte, error) {
	out := groupJSON{Node: nodeGroup, Kind: g.Kind, Label: g.Label, Name: g.Name, Children: make([]json.RawMessage, 0, len(g.Children))}
	for _, c := range g.Children {
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a tree produced by MarshalJSON.
func (g *Group) UnmarshalJSON(data []byte) error {
	var in groupJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	g.Kind, g.Label, g.Name = in.Kind, in.Label, in.Name
	g.Children = make([]Node, 0, len(in.Children))
	for _, raw := range in.Children {
		var peek struct {
			Node string `json:"node"`
		}
		if err := json.Unmarshal(raw, &peek); err != nil {
			return err
		}
		switch peek.Node {
		case nodeGroup:
			child := &Group{}
			if err := child.UnmarshalJSON(raw); err != nil {
				return err
			}
			g.Children = append(g.Children, child)
		case nodeResponse:
			child := &Response{}
			if err := json.Unmarshal(raw, child); err != nil {
				return err
			}
			g.Children = append(g.Children, child)
		default:
			return fmt.Errorf("unknown display node %q", peek.Node)
		}
	}
	return nil
}

// MarshalJSON tags the response node.
func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(responseJSON{
		Node:            nodeResponse,
		QuestionType:    r.QuestionType,
		Label:           r.Label,
		Name:            r.Name,
		ListName:        r.ListName,
		Value:           r.Value,
		Attachment:      r.Attachment,
		AttachmentError: r.AttachmentError,
	})
}

// UnmarshalJSON decodes a response node.
func (r *Response) UnmarshalJSON(data []byte) error {
	var in responseJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Response{
		QuestionType:    in.QuestionType,
		Label:           in.Label,
		Name:            in.Name,
		ListName:        in.ListName,
		Value:           in.Value,
		Attachment:      in.Attachment,
		AttachmentError: in.AttachmentError,
	}
	return nil
}

// Count returns the number of nodes in the tree rooted at g, g included.
func (g *Group) Count() int {
	n := 1
	for _, c := range g.Children {
		if child, ok := c.(*Group); ok {
			n += child.Count()
			continue
		}
		n++
	}
	return n
}
