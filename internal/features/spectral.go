// SPDX-License-Identifier: MIT
package features

// Band boundaries in Hz. Band i covers [BandEdges[i], BandEdges[i+1]); the
// last band also includes its upper edge.
var BandEdges = [NumBands + 1]float64{20, 60, 250, 2000, 8000, 20000}

// BandNames in low to high frequency order.
var BandNames = [NumBands]string{"Sub", "Low", "Mid", "High", "Air"}

// NumBands is the fixed number of production bands.
const NumBands = 5

// SpectralBand is the energy measured in one production band.
type SpectralBand struct {
	Name      string
	LowHz     float64
	HighHz    float64
	EnergyDB  float64
	EnergyPct float64
}

// SpectralResult is the energy distribution over the five bands, Sub to Air.
type SpectralResult struct {
	Bands         [NumBands]SpectralBand
	TotalEnergyDB float64
}

// Band returns the band with the given name.
func (s SpectralResult) Band(name string) (SpectralBand, bool) {
	for _, b := range s.Bands {
		if b.Name == name {
			return b, true
		}
	}
	return SpectralBand{}, false
}

// Spectrogram is a magnitude STFT: Frames[t][k] is the magnitude of bin k in
// frame t, bin k being centred on k*BinHz.
type Spectrogram struct {
	Frames [][]float64
	BinHz  float64
}

// FrequencyForBin returns the centre frequency of bin k.
func (s Spectrogram) FrequencyForBin(k int) float64 {
	return float64(k) * s.BinHz
}

// Envelope is an onset-strength time series sampled at FrameRate values per second.
type Envelope struct {
	Values    []float64
	FrameRate float64
}

// Duration returns the covered time span in seconds.
func (e Envelope) Duration() float64 {
	if e.FrameRate <= 0 {
		return 0
	}
	return float64(len(e.Values)) / e.FrameRate
}

// Chroma is the pitch-class energy of a whole track, index 0 = C.
type Chroma [12]float64
