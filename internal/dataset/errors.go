package dataset

import "github.com/rotisserie/eris"

// ErrDatasetUnavailable indicates the dataset could not be fetched or unpacked
// and no usable cached copy exists.
var ErrDatasetUnavailable = eris.New("dataset unavailable")

// ErrDatasetCorrupt indicates the cached flat file yielded zero valid records.
var ErrDatasetCorrupt = eris.New("dataset corrupt")
