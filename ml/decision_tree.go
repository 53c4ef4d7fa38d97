package ml

import (
	"errors"
	"fmt"
)

// KindDecisionTree tags decision tree artifacts.
const KindDecisionTree = "decision_tree"

// DecisionTree is a fitted binary-split tree stored as a flat node list with
// the root at index 0.
type DecisionTree struct {
	NFeatures int        `json:"n_features"`
	Nodes     []TreeNode `json:"nodes"`
	Features  []string   `json:"feature_names,omitempty"`
}

// TreeNode is one entry of the flattened tree; children are node indexes.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel float64 `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

// Predict walks from the root to a leaf and returns its class label.
func (dt *DecisionTree) Predict(features []float64) (float64, error) {
	if len(dt.Nodes) == 0 {
		return 0, ErrNotFitted
	}
	if err := checkShape(features, dt.NFeatures); err != nil {
		return 0, err
	}
	idx := 0
	// a well-formed tree reaches a leaf in fewer steps than it has nodes
	for steps := 0; steps <= len(dt.Nodes); steps++ {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree has a cycle")
}

func (dt *DecisionTree) NumFeatures() int { return dt.NFeatures }
func (dt *DecisionTree) Kind() string { return KindDecisionTree }
func (dt *DecisionTree) FeatureNames() []string { return dt.Features }

func (dt *DecisionTree) validate() error {
	if len(dt.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	if dt.NFeatures <= 0 {
		return errors.New("n_features must be positive")
	}
	if err := checkNames(dt.Features, dt.NFeatures); err != nil {
		return err
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= dt.NFeatures {
			return fmt.Errorf("node %d: feature_idx %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild <= i || node.LeftChild >= len(dt.Nodes) {
			return fmt.Errorf("node %d: left_child %d out of range", i, node.LeftChild)
		}
		if node.RightChild <= i || node.RightChild >= len(dt.Nodes) {
			return fmt.Errorf("node %d: right_child %d out of range", i, node.RightChild)
		}
	}
	return nil
}
