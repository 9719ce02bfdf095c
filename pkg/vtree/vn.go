package vtree

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <svg>, etc.
	KindText                  // Plain text node
	KindComponent             // Component instance
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// DN is an opaque handle to a live output node owned by the host
// environment (a DOM node in a browser host). The core never looks inside
// it; presence alone defines "mounted".
type DN = any

// VN is the base entity for every node in the render tree.
//
// The exported tree-structure fields are owned by the reconciler: it links
// nodes into sibling lists and child slices, assigns the anchor, and clears
// UpdateRequested / stamps LastUpdateTick when a scheduled update runs.
// The unexported service maps are owned exclusively by the node and are nil,
// not empty, whenever the node has no published or subscribed services.
type VN struct {
	// Kind identifies the concrete node variant.
	Kind Kind

	// Name is the display name used in diagnostics and error paths.
	// Empty falls back to the Kind name.
	Name string

	// Parent is the owning node; nil for roots. Not an ownership edge —
	// the tree owns children, not parents.
	Parent *VN

	// Depth is the nesting level: 0 for roots, else Parent.Depth+1.
	// Recomputed on every Init, never persisted across moves.
	Depth int

	// AnchorDN is the host output node under which this node's rendered
	// output lives. Non-nil means mounted.
	AnchorDN DN

	// Next and Prev link this node into its parent's child list.
	Next *VN
	Prev *VN

	// SubNodes is the ordered child list; nil when the node has no children.
	SubNodes []*VN

	// UpdateRequested latches while an update request is queued with the
	// scheduler. At most one request is outstanding per node.
	UpdateRequested bool

	// LastUpdateTick is the scheduler tick at which this node was last
	// rendered. The scheduler skips nodes whose tick already matches the
	// current one, so a node is never rendered twice in one pass.
	LastUpdateTick int64

	id uint64

	publishedServices  map[string]any
	subscribedServices map[string]*SubscriptionRecord
}

// Init wires the node under parent and computes its depth. It must be
// called exactly once, before any other member is used and before the
// reconciler links the node into sibling lists.
func (vn *VN) Init(parent *VN) {
	if DebugMode && vn.id != 0 {
		panic("vtree: Init called twice on the same node")
	}

	vn.id = nextID()
	vn.Parent = parent
	if parent != nil {
		vn.Depth = parent.Depth + 1
	} else {
		vn.Depth = 0
	}
}

// ID returns the unique identifier assigned at Init.
func (vn *VN) ID() uint64 {
	return vn.id
}

// IsMounted returns true if the node has a live output anchor.
func (vn *VN) IsMounted() bool {
	return vn.AnchorDN != nil
}

// Term tears the node down: every published service is unpublished, every
// subscription is withdrawn, and all tree linkage is cleared. After Term
// the node is inert; calling any other method on it is undefined behavior.
func (vn *VN) Term() {
	if vn.publishedServices != nil {
		for id := range vn.publishedServices {
			registry().NotifyUnpublished(id, vn)
		}
		vn.publishedServices = nil
	}

	if vn.subscribedServices != nil {
		for id, rec := range vn.subscribedServices {
			if rec.Ref != nil {
				rec.Ref.Clear()
			}
			registry().NotifyUnsubscribed(id, vn)
		}
		vn.subscribedServices = nil
	}

	vn.AnchorDN = nil
	vn.Next = nil
	vn.Prev = nil
	vn.SubNodes = nil
	vn.Parent = nil
	vn.Depth = 0
}

// Path returns the chain of node names from this node to the root,
// leaf first. Used in error reports.
func (vn *VN) Path() []string {
	var path []string
	for n := vn; n != nil; n = n.Parent {
		path = append(path, n.DisplayName())
	}
	return path
}

// DisplayName returns Name, falling back to the Kind name.
func (vn *VN) DisplayName() string {
	if vn.Name != "" {
		return vn.Name
	}
	return vn.Kind.String()
}
