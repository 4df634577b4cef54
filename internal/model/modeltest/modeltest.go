// Package modeltest writes small XGBoost models for tests.
package modeltest

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Tree is a regression tree in the form XGBoost trains them
type Tree struct {
	feature     int
	threshold   float32
	defaultLeft bool
	left, right *Tree
	value       float32
	leaf        bool
}

// Leaf returns a terminal node
func Leaf(v float32) *Tree {
	return &Tree{value: v, leaf: true}
}

// Split returns a node sending x[feature] < threshold to left. Missing
// values go left when defaultLeft is set.
func Split(feature int, threshold float32, defaultLeft bool, left, right *Tree) *Tree {
	return &Tree{feature: feature, threshold: threshold, defaultLeft: defaultLeft, left: left, right: right}
}

// The structs below follow the layout of XGBoost's binary save_model output.

type learnerParam struct {
	BaseScore          float32
	NumFeatures        uint32
	NumClass           int32
	ContainExtraAttrs  int32
	ContainEvalMetrics int32
	Reserved           [29]int32
}

type gbtreeParam struct {
	NumTrees             int32
	NumRoots             int32
	NumFeature           int32
	Pad32bit             int32
	NumPbufferDeprecated int64
	NumOutputGroup       int32
	SizeLeafVector       int32
	Reserved             [32]int32
}

type treeParam struct {
	NumRoots       int32
	NumNodes       int32
	NumDeleted     int32
	MaxDepth       int32
	NumFeature     int32
	SizeLeafVector int32
	Reserved       [31]int32
}

type treeNode struct {
	Parent int32
	CLeft  int32
	CRight int32
	SIndex uint32
	Info   float32
}

type nodeStat struct {
	LossChg      float32
	SumHess      float32
	BaseWeight   float32
	LeafChildCnt int32
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) put(v interface{}) {
	if err := binary.Write(&w.buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
}

func (w *writer) putString(s string) {
	w.put(uint64(len(s)))
	w.buf.WriteString(s)
}

// Binary encodes a squared-error gbtree regressor with the given base score
func Binary(baseScore float32, numFeatures int, trees ...*Tree) []byte {
	w := &writer{}
	w.put(learnerParam{BaseScore: baseScore, NumFeatures: uint32(numFeatures)})
	w.putString("reg:squarederror")
	w.putString("gbtree")
	w.put(gbtreeParam{
		NumTrees:       int32(len(trees)),
		NumRoots:       1,
		NumFeature:     int32(numFeatures),
		NumOutputGroup: 1,
	})

	for _, t := range trees {
		nodes := flatten(t)
		w.put(treeParam{
			NumRoots:   1,
			NumNodes:   int32(len(nodes)),
			MaxDepth:   int32(depth(t)),
			NumFeature: int32(numFeatures),
		})
		for _, n := range nodes {
			w.put(n)
		}
		for range nodes {
			w.put(nodeStat{})
		}
	}

	// tree_info: every tree belongs to output group 0
	for range trees {
		w.put(int32(0))
	}
	return w.buf.Bytes()
}

// flatten lays the tree out with the root at index 0
func flatten(root *Tree) []treeNode {
	var nodes []treeNode
	var add func(t *Tree, parent int32) int32
	add = func(t *Tree, parent int32) int32 {
		idx := int32(len(nodes))
		nodes = append(nodes, treeNode{Parent: parent, CLeft: -1, CRight: -1})
		if t.leaf {
			nodes[idx].Info = t.value
			return idx
		}

		sindex := uint32(t.feature)
		if t.defaultLeft {
			sindex |= 1 << 31
		}
		left := add(t.left, idx)
		right := add(t.right, idx)
		nodes[idx].CLeft = left
		nodes[idx].CRight = right
		nodes[idx].SIndex = sindex
		nodes[idx].Info = t.threshold
		return idx
	}
	add(root, -1)
	return nodes
}

func depth(t *Tree) int {
	if t.leaf {
		return 0
	}
	l, r := depth(t.left), depth(t.right)
	if l > r {
		return l + 1
	}
	return r + 1
}

// Manifest returns a model pack manifest naming the model's input columns
func Manifest(features []string) []byte {
	data, err := json.Marshal(map[string]interface{}{
		"format":        "xgboost-binary",
		"version":       "test",
		"feature_names": features,
	})
	if err != nil {
		panic(err)
	}
	return data
}

// WritePack writes model.bin and manifest.json into dir and returns the model path
func WritePack(t testing.TB, dir string, baseScore float32, features []string, trees ...*Tree) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	modelPath := filepath.Join(dir, "model.bin")
	if err := os.WriteFile(modelPath, Binary(baseScore, len(features), trees...), 0o644); err != nil {
		t.Fatalf("Failed to write model: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), Manifest(features), 0o644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	return modelPath
}
