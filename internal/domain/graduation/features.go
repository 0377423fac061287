package graduation

// NumFeatures is the width of the model input
const NumFeatures = 10

// FeatureVector is the fixed-order numeric encoding of a validated request.
// Order must match the training feature order:
// ips_1..4, cuti_1..4 (as codes), total_sks_ditempuh, total_sks_tidak_lulus.
type FeatureVector [NumFeatures]float64

// Float32 converts the vector to the tensor element type of the ONNX export
func (v FeatureVector) Float32() []float32 {
	out := make([]float32, NumFeatures)
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// Map returns the vector keyed by field name, for logs and prediction records
func (v FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, NumFeatures)
	for i, name := range RequiredFields {
		out[name] = v[i]
	}
	return out
}
