package cycles

// Ref identifies one task inside a reported cycle.
type Ref struct {
	ID    string `json:"id" toon:"id"`
	Title string `json:"title" toon:"title"`
}

// Cycle is a loop of dependency-linked tasks. None of its members can
// be completed while the loop stands.
type Cycle struct {
	Nodes  []Ref `json:"nodes" toon:"nodes"`
	Length int   `json:"length" toon:"length"`
}
