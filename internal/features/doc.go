// SPDX-License-Identifier: MIT
/*
Package features holds the value types shared by the analysis and comparison
stages: decoded sample buffers, per-track results (tempo, key, spectral balance,
loudness), the fixed genre/platform lookup tables and the Camelot wheel.

Every result type is a plain value. Nothing in this package is mutated after it
has been constructed, so results can be handed between goroutines freely.
*/
package features
