package onnx

import (
	"fmt"
	"math"

	ort "github.com/yalue/onnxruntime_go"
)

// truncate caps a sequence at maxLen tokens, keeping the final special token ([SEP] or </s>).
func truncate(ids, mask, types []int, maxLen int) ([]int, []int, []int) {
	if len(types) != len(ids) {
		types = make([]int, len(ids))
	}
	if len(mask) != len(ids) {
		mask = make([]int, len(ids))
		for i := range mask {
			mask[i] = 1
		}
	}
	if maxLen <= 1 || len(ids) <= maxLen {
		return ids, mask, types
	}

	last := len(ids) - 1
	cut := func(s []int) []int {
		out := make([]int, maxLen)
		copy(out, s[:maxLen-1])
		out[maxLen-1] = s[last]
		return out
	}
	return cut(ids), cut(mask), cut(types)
}

// pool turns a model output into one vector: [1, dim] is taken as is,
// [1, tokens, dim] is mean-pooled over positions where mask is set.
func pool(shape ort.Shape, data []float32, mask []int) ([]float32, error) {
	switch len(shape) {
	case 2:
		dim := int(shape[1])
		if shape[0] != 1 || len(data) < dim {
			return nil, fmt.Errorf("unexpected output shape %v", shape)
		}
		out := make([]float32, dim)
		copy(out, data[:dim])
		return out, nil
	case 3:
		tokens, dim := int(shape[1]), int(shape[2])
		if shape[0] != 1 || tokens != len(mask) || len(data) < tokens*dim {
			return nil, fmt.Errorf("unexpected output shape %v for %d tokens", shape, len(mask))
		}
		return meanPool(data, tokens, dim, mask), nil
	default:
		return nil, fmt.Errorf("unexpected output rank %d", len(shape))
	}
}

func meanPool(hidden []float32, tokens, dim int, mask []int) []float32 {
	sum := make([]float64, dim)
	var count float64
	for t := 0; t < tokens; t++ {
		if mask[t] == 0 {
			continue
		}
		count++
		row := hidden[t*dim : (t+1)*dim]
		for j, v := range row {
			sum[j] += float64(v)
		}
	}
	out := make([]float32, dim)
	if count == 0 {
		return out
	}
	for j := range sum {
		out[j] = float32(sum[j] / count)
	}
	return out
}

func normalize(v []float32) {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	if sq == 0 {
		return
	}
	inv := 1 / math.Sqrt(sq)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

func toInt64(s []int) []int64 {
	out := make([]int64, len(s))
	for i, v := range s {
		out[i] = int64(v)
	}
	return out
}
