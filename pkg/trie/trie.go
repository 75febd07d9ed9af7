// Package trie implements a path-segment trie used for route classification.
package trie

import (
	"fmt"
)

const (
	WildcardSegment = "*"
)

// Node represents a trie node with generic value type T.
type Node[T any] struct {
	Children map[string]*Node[T]
	Value    T
	IsEnd    bool
}

// New creates and returns a new instance of Node with an initialized Children map.
func New[T any]() *Node[T] {
	return &Node[T]{
		Children: make(map[string]*Node[T]),
	}
}

// Insert adds a value to the trie at the specified segments, creating
// intermediate nodes if not present. Returns an error if the segments already
// exist in the trie.
func (n *Node[T]) Insert(segments []string, value T) error {
	currentNode := n

	for _, s := range segments {
		if currentNode.Children[s] == nil {
			currentNode.Children[s] = &Node[T]{
				Children: make(map[string]*Node[T]),
			}
		}

		currentNode = currentNode.Children[s]
	}

	if currentNode.IsEnd {
		return fmt.Errorf("segments %v already exist", segments)
	}

	currentNode.Value = value
	currentNode.IsEnd = true
	return nil
}

// Search finds a node by segments, supporting wildcard matching.
func (n *Node[T]) Search(segments []string) (*Node[T], error) {
	currentNode := n

	for _, s := range segments {
		// Exact match first, wildcard as fallback
		if currentNode.Children[s] != nil {
			currentNode = currentNode.Children[s]
			continue
		}

		if currentNode.Children[WildcardSegment] != nil {
			currentNode = currentNode.Children[WildcardSegment]
			continue
		}

		return nil, fmt.Errorf("no entry found for segment %s in %v", s, segments)
	}

	if !currentNode.IsEnd {
		return nil, fmt.Errorf("segments %v not found", segments)
	}

	return currentNode, nil
}

// SearchPrefix walks segments and returns the deepest end node passed on the
// way, so an inserted entry matches itself and everything nested under it.
// The second return value reports whether any end node was reached.
func (n *Node[T]) SearchPrefix(segments []string) (*Node[T], bool) {
	currentNode := n
	var match *Node[T]

	if currentNode.IsEnd {
		match = currentNode
	}

	for _, s := range segments {
		next := currentNode.Children[s]
		if next == nil {
			next = currentNode.Children[WildcardSegment]
		}
		if next == nil {
			break
		}

		currentNode = next
		if currentNode.IsEnd {
			match = currentNode
		}
	}

	return match, match != nil
}
