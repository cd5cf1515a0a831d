package component

import "fmt"

// BodyPart names a rig bone the performances query or drive.
type BodyPart int

const (
	PartNone BodyPart = iota
	PartRoot
	PartHips0
	PartSpine0
	PartSpine2
	PartSpine3
	PartNeck2
	PartHead
	PartLeftHand0
	PartRightHand0
	PartLeftMiddle0
	PartRightMiddle0
	PartLeftFoot0
	PartRightFoot0
	partCount
)

var bodyPartNames = [partCount]string{
	PartNone:         "",
	PartRoot:         "Root",
	PartHips0:        "Hips0",
	PartSpine0:       "Spine0",
	PartSpine2:       "Spine2",
	PartSpine3:       "Spine3",
	PartNeck2:        "Neck2",
	PartHead:         "Head",
	PartLeftHand0:    "LeftHand0",
	PartRightHand0:   "RightHand0",
	PartLeftMiddle0:  "LeftMiddle0",
	PartRightMiddle0: "RightMiddle0",
	PartLeftFoot0:    "LeftFoot0",
	PartRightFoot0:   "RightFoot0",
}

func (p BodyPart) String() string {
	if p < 0 || p >= partCount {
		return fmt.Sprintf("BodyPart(%d)", int(p))
	}
	return bodyPartNames[p]
}

// BodyParts lists every named part.
func BodyParts() []BodyPart {
	out := make([]BodyPart, 0, partCount-1)
	for p := PartRoot; p < partCount; p++ {
		out = append(out, p)
	}
	return out
}

func ParseBodyPart(name string) (BodyPart, error) {
	for p := PartRoot; p < partCount; p++ {
		if bodyPartNames[p] == name {
			return p, nil
		}
	}
	return PartNone, fmt.Errorf("component: unknown body part %q", name)
}

// UnmarshalText lets body parts appear by name in YAML documents.
func (p *BodyPart) UnmarshalText(text []byte) error {
	part, err := ParseBodyPart(string(text))
	if err != nil {
		return err
	}
	*p = part
	return nil
}

func (p BodyPart) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
