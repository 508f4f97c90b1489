package weather

// Response is one location's answer from the forecast API in columnar form.
// Variables inside a group are addressed by position, in request order.
type Response struct {
	Latitude             float64
	Longitude            float64
	Elevation            float64
	Timezone             string
	TimezoneAbbreviation string
	UTCOffsetSeconds     int64

	Current Group
	Daily   Group
}

// Group is a block of variables sharing one time axis. Time is inclusive,
// TimeEnd exclusive, both unix seconds; Interval is in seconds.
type Group struct {
	Time      int64
	TimeEnd   int64
	Interval  int64
	Variables []Column
}

// Column holds one variable. Scalar groups use Value, series groups Values.
// Missing upstream values are NaN.
type Column struct {
	Variable Variable
	Value    float64
	Values   []float64
}
