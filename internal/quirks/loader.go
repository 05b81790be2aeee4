package quirks

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"trainload/internal/trainerr"
	"trainload/internal/workout"
)

// catalogDocument is the on-disk shape of a device-quirk catalog, per
// spec.md §6: a list of entries matching a device identity to one quirk.
type catalogDocument struct {
	Entries []catalogEntry `toml:"entries"`
}

type catalogEntry struct {
	ManufacturerID uint16  `toml:"manufacturer_id"`
	ProductID      uint16  `toml:"product_id"`
	FirmwareMin    *uint16 `toml:"firmware_min"`
	FirmwareMax    *uint16 `toml:"firmware_max"`
	Description    string  `toml:"description"`
	DefaultEnabled bool    `toml:"default_enabled"`

	QuirkKind  string   `toml:"quirk_kind"`
	Factor     float64  `toml:"factor"`
	ThresholdW float64  `toml:"threshold_w"`
	WindowS    uint32   `toml:"window_s"`
	GCTScale   *float64 `toml:"gct_scale"`
	GCTUUID    string   `toml:"gct_field_uuid"`
	GCTField   uint8    `toml:"gct_field_number"`
	VOScale    *float64 `toml:"vo_scale"`
	VOUUID     string   `toml:"vo_field_uuid"`
	VOField    uint8    `toml:"vo_field_number"`
}

func (e catalogEntry) toDeviceEntry() (DeviceEntry, error) {
	var kind Kind
	switch {
	case strings.EqualFold(e.QuirkKind, "CadenceScale"):
		kind = KindCadenceScale
	case strings.EqualFold(e.QuirkKind, "LeadingPowerSpike"):
		kind = KindLeadingPowerSpike
	case strings.EqualFold(e.QuirkKind, "LeftOnlyDoublePrevention"):
		kind = KindLeftOnlyDoublePrevention
	case strings.EqualFold(e.QuirkKind, "RunningDynamicsScale"):
		kind = KindRunningDynamicsScale
	default:
		return DeviceEntry{}, trainerr.New(trainerr.KindConfig, fmt.Sprintf("unknown quirk_kind %q for manufacturer=%d product=%d", e.QuirkKind, e.ManufacturerID, e.ProductID))
	}

	q := Quirk{
		Kind:       kind,
		Factor:     e.Factor,
		ThresholdW: e.ThresholdW,
		WindowS:    e.WindowS,
		GCTScale:   e.GCTScale,
		VOScale:    e.VOScale,
	}
	if e.GCTUUID != "" {
		id, err := uuid.Parse(e.GCTUUID)
		if err != nil {
			return DeviceEntry{}, trainerr.Wrap(trainerr.KindConfig, err, "gct_field_uuid")
		}
		q.GCTKey = &workout.DevFieldKey{UUID: id, FieldNumber: e.GCTField}
	}
	if e.VOUUID != "" {
		id, err := uuid.Parse(e.VOUUID)
		if err != nil {
			return DeviceEntry{}, trainerr.Wrap(trainerr.KindConfig, err, "vo_field_uuid")
		}
		q.VOKey = &workout.DevFieldKey{UUID: id, FieldNumber: e.VOField}
	}

	de := DeviceEntry{
		ManufacturerID: e.ManufacturerID,
		ProductID:      e.ProductID,
		Description:    e.Description,
		DefaultEnabled: e.DefaultEnabled,
		Quirk:          q,
	}
	if e.FirmwareMin != nil && e.FirmwareMax != nil {
		de.HasFirmwareRange = true
		de.FirmwareMin = *e.FirmwareMin
		de.FirmwareMax = *e.FirmwareMax
	}
	return de, nil
}

// LoadFile parses a device-quirk catalog document from path and returns the
// validated Registry built from it. An unknown quirk kind is fatal here,
// per §4.E's load-time failure semantics.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, trainerr.Wrap(trainerr.KindConfig, err, "read device-quirk catalog "+path)
	}
	var doc catalogDocument
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, trainerr.Wrap(trainerr.KindConfig, err, "parse device-quirk catalog "+path)
	}

	entries := make([]DeviceEntry, 0, len(doc.Entries))
	for _, ce := range doc.Entries {
		de, err := ce.toDeviceEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, de)
	}
	return NewRegistry(entries)
}
