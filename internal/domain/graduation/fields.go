package graduation

// Payload is a client-supplied prediction document before validation
type Payload map[string]interface{}

// Request field names
const (
	FieldIPS1             = "ips_1"
	FieldIPS2             = "ips_2"
	FieldIPS3             = "ips_3"
	FieldIPS4             = "ips_4"
	FieldCuti1            = "cuti_1"
	FieldCuti2            = "cuti_2"
	FieldCuti3            = "cuti_3"
	FieldCuti4            = "cuti_4"
	FieldCreditsAttempted = "total_sks_ditempuh"
	FieldCreditsFailed    = "total_sks_tidak_lulus"
)

// Score bounds, inclusive
const (
	MinScore = 0.0
	MaxScore = 4.0
)

// ScoreFields are the per-semester performance scores (IPS)
var ScoreFields = []string{FieldIPS1, FieldIPS2, FieldIPS3, FieldIPS4}

// StatusFields are the per-semester enrollment statuses (cuti)
var StatusFields = []string{FieldCuti1, FieldCuti2, FieldCuti3, FieldCuti4}

// RequiredFields lists every field in feature vector order
var RequiredFields = []string{
	FieldIPS1, FieldIPS2, FieldIPS3, FieldIPS4,
	FieldCuti1, FieldCuti2, FieldCuti3, FieldCuti4,
	FieldCreditsAttempted, FieldCreditsFailed,
}
