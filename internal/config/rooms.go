package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoomDescriptor describes a single study room.
type RoomDescriptor struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Capacity    int    `yaml:"capacity" json:"capacity"`
}

// RoomCatalog is the fixed, ordered set of rooms seats can be borrowed in.
// It is loaded once at startup and never mutated afterwards; catalog order
// determines the order rooms appear in aggregate responses.
type RoomCatalog struct {
	rooms []RoomDescriptor
	byID  map[string]int
}

type roomsFile struct {
	Rooms []RoomDescriptor `yaml:"rooms"`
}

// LoadRooms loads and validates the room catalog from a YAML file.
func LoadRooms(path string) (*RoomCatalog, error) {
	if path == "" {
		path = "configs/rooms.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms config: %w", err)
	}

	var f roomsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rooms config: %w", err)
	}

	return NewRoomCatalog(f.Rooms)
}

// NewRoomCatalog builds a catalog from descriptors, validating them.
func NewRoomCatalog(rooms []RoomDescriptor) (*RoomCatalog, error) {
	if len(rooms) == 0 {
		return nil, fmt.Errorf("no rooms defined")
	}

	byID := make(map[string]int, len(rooms))
	for i, r := range rooms {
		if r.ID == "" {
			return nil, fmt.Errorf("room[%d]: id is required", i)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("room[%d]: duplicate id '%s'", i, r.ID)
		}
		if r.DisplayName == "" {
			return nil, fmt.Errorf("room[%d]: display_name is required", i)
		}
		// Zero capacity would make the fill ratio undefined.
		if r.Capacity <= 0 {
			return nil, fmt.Errorf("room[%d]: capacity must be positive, got %d", i, r.Capacity)
		}
		byID[r.ID] = i
	}

	return &RoomCatalog{rooms: rooms, byID: byID}, nil
}

// Contains reports whether a room id is part of the catalog.
func (c *RoomCatalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Get returns the descriptor for a room id.
func (c *RoomCatalog) Get(id string) (RoomDescriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return RoomDescriptor{}, false
	}
	return c.rooms[i], true
}

// Rooms returns the descriptors in catalog order.
func (c *RoomCatalog) Rooms() []RoomDescriptor {
	return c.rooms
}

func (c *RoomCatalog) String() string {
	return fmt.Sprintf("RoomCatalog: %d rooms", len(c.rooms))
}
