// Package merkle builds per-block Merkle trees over transaction sets and
// produces inclusion proofs for tamper detection.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/ccoin/veil/pkg/types"
)

// Errors returned by proof generation and verification.
var (
	ErrTransactionNotFound = errors.New("merkle: transaction not found in tree")
)

// emptyHash is SHA-256("") hex-encoded, the root of a tree built over no
// transactions.
var emptyHash = hashHex([]byte{})

// node is an internal or leaf node in the tree.
type node struct {
	hash  string
	left  *node
	right *node
}

func (n *node) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// Tree is a Merkle tree over a fixed transaction set, built bottom-up with
// duplication of the trailing node at every level with an odd count.
type Tree struct {
	root *node
}

// ProofElement is one step from a leaf toward the root: the sibling's hash
// and which side it sits on.
type ProofElement struct {
	Position string `json:"position"` // "left" or "right"
	Hash     string `json:"hash"`
}

// Build constructs a Merkle tree over txs. An empty transaction list
// produces a tree whose root is SHA-256("").
func Build(txs []types.Transaction) (*Tree, error) {
	if len(txs) == 0 {
		return &Tree{root: &node{hash: emptyHash}}, nil
	}

	leaves := make([]*node, 0, len(txs))
	for i := range txs {
		h, err := hashTransaction(&txs[i])
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, &node{hash: h})
	}
	if len(leaves)%2 == 1 {
		leaves = append(leaves, leaves[len(leaves)-1])
	}

	return &Tree{root: buildLevel(leaves)}, nil
}

func buildLevel(nodes []*node) *node {
	if len(nodes) == 1 {
		return nodes[0]
	}

	nextLevel := make([]*node, 0, (len(nodes)+1)/2)
	for i := 0; i < len(nodes); i += 2 {
		left := nodes[i]
		right := left
		if i+1 < len(nodes) {
			right = nodes[i+1]
		}
		nextLevel = append(nextLevel, &node{
			hash:  hashPair(left.hash, right.hash),
			left:  left,
			right: right,
		})
	}
	return buildLevel(nextLevel)
}

// Root returns the tree's root hash.
func (t *Tree) Root() string {
	if t == nil || t.root == nil {
		return emptyHash
	}
	return t.root.hash
}

// pathStep records which child of a node was descended into while
// searching for a leaf.
type pathStep struct {
	n         *node
	direction string
}

// Proof generates an inclusion proof for tx by locating its leaf hash via
// breadth-first search, then walking the discovered path back to the root.
func (t *Tree) Proof(tx *types.Transaction) ([]ProofElement, error) {
	txHash, err := hashTransaction(tx)
	if err != nil {
		return nil, err
	}
	if t == nil || t.root == nil {
		return nil, ErrTransactionNotFound
	}

	var foundPath []pathStep
	current := []*node{t.root}

	for len(current) > 0 {
		var next []*node
		for _, n := range current {
			if n.isLeaf() && n.hash == txHash {
				return generateProof(foundPath, txHash), nil
			}
			if n.left != nil {
				foundPath = append(foundPath, pathStep{n, "left"})
				next = append(next, n.left)
			}
			if n.right != nil {
				foundPath = append(foundPath, pathStep{n, "right"})
				next = append(next, n.right)
			}
		}
		current = next
	}

	return nil, ErrTransactionNotFound
}

// generateProof walks foundPath in reverse, emitting the sibling at each
// level the target hash passed through.
func generateProof(foundPath []pathStep, txHash string) []ProofElement {
	var proof []ProofElement
	current := txHash

	for i := len(foundPath) - 1; i >= 0; i-- {
		step := foundPath[i]
		switch step.direction {
		case "left":
			if step.n.left != nil && step.n.left.hash == current {
				if step.n.right != nil {
					proof = append(proof, ProofElement{Position: "right", Hash: step.n.right.hash})
				}
				current = step.n.hash
			}
		case "right":
			if step.n.right != nil && step.n.right.hash == current {
				if step.n.left != nil {
					proof = append(proof, ProofElement{Position: "left", Hash: step.n.left.hash})
				}
				current = step.n.hash
			}
		}
	}

	return proof
}

// Verify folds proof onto leafHash in order and checks the result matches
// root.
func Verify(leafHash string, proof []ProofElement, root string) bool {
	if len(proof) == 0 {
		return leafHash == root
	}

	current := leafHash
	for _, element := range proof {
		if element.Position == "left" {
			current = hashPair(element.Hash, current)
		} else {
			current = hashPair(current, element.Hash)
		}
	}
	return current == root
}

// hashTransaction hashes a transaction's canonical JSON encoding.
func hashTransaction(tx *types.Transaction) (string, error) {
	encoded, err := types.CanonicalJSON(tx)
	if err != nil {
		return "", err
	}
	return hashHex(encoded), nil
}

// hashPair hashes two child hashes together.
func hashPair(left, right string) string {
	return hashHex([]byte(left + right))
}

func hashHex(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
