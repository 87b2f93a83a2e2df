package models

import "time"

// PhotoType identifies one of the three required identification poses.
type PhotoType string

const (
	PhotoLeftProfile  PhotoType = "left_profile"
	PhotoRightProfile PhotoType = "right_profile"
	PhotoFrontFace    PhotoType = "front_face"
)

// PhotoTypes lists the required poses in presentation order. All three are
// required; the order carries no meaning for completion.
var PhotoTypes = []PhotoType{PhotoLeftProfile, PhotoFrontFace, PhotoRightProfile}

// Valid reports whether p names a known pose.
func (p PhotoType) Valid() bool {
	switch p {
	case PhotoLeftProfile, PhotoRightProfile, PhotoFrontFace:
		return true
	}
	return false
}

// DriverPhoto matches the document in the driver_photos collection.
// One document per (driver, pose); uploads upsert on that pair.
type DriverPhoto struct {
	ID        string    `bson:"photoID" json:"id"`
	DriverID  string    `bson:"driverID" json:"driver_id"`
	PhotoType PhotoType `bson:"photoType" json:"photo_type"`
	PhotoURL  string    `bson:"photoURL" json:"photo_url"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}
