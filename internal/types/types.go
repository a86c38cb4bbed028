package types

// Record is one detected object instance on a sampled frame.
// Written once to the per-video metadata file and never updated in place.
type Record struct {
	Timestamp  float64    `json:"timestamp"` // seconds from video start
	Object     string     `json:"object"`    // class label
	BBox       [4]float64 `json:"bbox"`      // [x1, y1, x2, y2] pixel coordinates
	Confidence float64    `json:"confidence"`
}

// Result annotates a Record with the video it was found in.
type Result struct {
	Video string `json:"video"`
	Record
}

// Detection matches the JSON structure coming back from the detector worker.
type Detection struct {
	Box        [4]float64 `json:"box"` // [x1, y1, x2, y2]
	Confidence float64    `json:"confidence"`
	Class      int        `json:"class"`
}

// Handshake is the first message the worker sends after loading the model.
type Handshake struct {
	Names map[int]string `json:"names"`
}

// ErrorResult captures the error object returned by the worker on failure.
type ErrorResult struct {
	Error string `json:"error"`
}
