package hue

type Alert string

const (
	AlertNone    Alert = "none"
	AlertSelect  Alert = "select"
	AlertLSelect Alert = "lselect"
)

// LightState is a partial light state write. Only fields that were set are sent.
//
// Hue is in the range 0..65535 (degrees * 182), Brightness and Saturation in 0..255.
// TransitionTime is measured in tenths of a second, 0 means a hard switch.
type LightState struct {
	On             *bool   `json:"on,omitempty"`
	Brightness     *uint8  `json:"bri,omitempty"`
	Saturation     *uint8  `json:"sat,omitempty"`
	Hue            *uint16 `json:"hue,omitempty"`
	Alert          Alert   `json:"alert,omitempty"`
	TransitionTime *uint16 `json:"transitiontime,omitempty"`
}

func NewLightState() LightState {
	return LightState{}
}

func (s LightState) WithOn(on bool) LightState {
	s.On = &on
	return s
}

func (s LightState) WithBrightness(bri uint8) LightState {
	s.Brightness = &bri
	return s
}

func (s LightState) WithSaturation(sat uint8) LightState {
	s.Saturation = &sat
	return s
}

func (s LightState) WithHue(hue uint16) LightState {
	s.Hue = &hue
	return s
}

func (s LightState) WithAlert(a Alert) LightState {
	s.Alert = a
	return s
}

func (s LightState) WithTransitionTime(tenths uint16) LightState {
	s.TransitionTime = &tenths
	return s
}

// Merge returns s with every field that is set in other copied over it.
func (s LightState) Merge(other LightState) LightState {
	if other.On != nil {
		s.On = other.On
	}
	if other.Brightness != nil {
		s.Brightness = other.Brightness
	}
	if other.Saturation != nil {
		s.Saturation = other.Saturation
	}
	if other.Hue != nil {
		s.Hue = other.Hue
	}
	if other.Alert != "" {
		s.Alert = other.Alert
	}
	if other.TransitionTime != nil {
		s.TransitionTime = other.TransitionTime
	}
	return s
}

func (s LightState) IsEmpty() bool {
	return s == LightState{}
}
