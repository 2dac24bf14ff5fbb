// Package overlay renders a product carousel into a framework-agnostic node tree.
package overlay

// Kind is the element type of a node.
type Kind string

const (
	KindBox    Kind = "box"
	KindImage  Kind = "image"
	KindText   Kind = "text"
	KindButton Kind = "button"
)

// Role names what a node represents inside a carousel.
type Role string

const (
	RoleCarousel    Role = "carousel"
	RoleLayout      Role = "layout"
	RoleContent     Role = "content"
	RoleInfo        Role = "info"
	RoleThumbnail   Role = "thumbnail"
	RoleTitle       Role = "title"
	RolePrice       Role = "price"
	RoleDescription Role = "description"
	RoleButton      Role = "button"
	RoleScrollSlot  Role = "scroll-slot"
	RoleButtonText  Role = "button-text" // button label shown in the scroll slot
)

// ActionProductClick is the only click action a carousel carries.
const ActionProductClick = "product_click"

// Action marks a node as a click target.
type Action struct {
	Type      string `json:"type"`
	ProductID string `json:"productId"`
	URL       string `json:"url"`
}

// Style maps CSS property names to values.
type Style map[string]string

// Node is one element of a rendered carousel.
type Node struct {
	Kind     Kind     `json:"kind"`
	Role     Role     `json:"role"`
	Text     string   `json:"text,omitempty"`
	Src      string   `json:"src,omitempty"`
	Alt      string   `json:"alt,omitempty"`
	Href     string   `json:"href,omitempty"`
	Class    []string `json:"class,omitempty"`
	Style    Style    `json:"style,omitempty"`
	Action   *Action  `json:"action,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

func box(role Role, style Style, children ...*Node) *Node {
	return &Node{Kind: KindBox, Role: role, Style: style, Children: children}
}

func (n *Node) append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Find returns the first node with the given role in depth-first order, or nil.
func (n *Node) Find(role Role) *Node {
	if n == nil {
		return nil
	}
	if n.Role == role {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(role); found != nil {
			return found
		}
	}
	return nil
}

// Targets returns every node carrying a click action.
func (n *Node) Targets() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	if n.Action != nil {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, c.Targets()...)
	}
	return out
}
