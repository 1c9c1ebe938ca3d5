package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRoomCatalog(t *testing.T) {
	tests := []struct {
		name    string
		rooms   []RoomDescriptor
		wantErr bool
	}{
		{
			name: "valid catalog",
			rooms: []RoomDescriptor{
				{ID: "lab1", DisplayName: "Lab 1", Capacity: 24},
				{ID: "self", DisplayName: "Self-study room", Capacity: 36},
			},
		},
		{
			name:    "empty catalog",
			rooms:   nil,
			wantErr: true,
		},
		{
			name: "missing id",
			rooms: []RoomDescriptor{
				{DisplayName: "Lab 1", Capacity: 24},
			},
			wantErr: true,
		},
		{
			name: "duplicate id",
			rooms: []RoomDescriptor{
				{ID: "lab1", DisplayName: "Lab 1", Capacity: 24},
				{ID: "lab1", DisplayName: "Lab 1 again", Capacity: 24},
			},
			wantErr: true,
		},
		{
			name: "missing display name",
			rooms: []RoomDescriptor{
				{ID: "lab1", Capacity: 24},
			},
			wantErr: true,
		},
		{
			name: "zero capacity",
			rooms: []RoomDescriptor{
				{ID: "lab1", DisplayName: "Lab 1", Capacity: 0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoomCatalog(tt.rooms)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRoomCatalog: err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoomCatalogLookups(t *testing.T) {
	catalog, err := NewRoomCatalog([]RoomDescriptor{
		{ID: "lab1", DisplayName: "Lab 1", Capacity: 24},
		{ID: "self", DisplayName: "Self-study room", Capacity: 36},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	if !catalog.Contains("lab1") || !catalog.Contains("self") {
		t.Error("expected catalog to contain configured rooms")
	}
	if catalog.Contains("lab9") {
		t.Error("catalog should not contain unknown rooms")
	}

	room, ok := catalog.Get("self")
	if !ok || room.Capacity != 36 {
		t.Errorf("unexpected descriptor: %+v ok=%v", room, ok)
	}

	// Rooms come back in declaration order.
	rooms := catalog.Rooms()
	if len(rooms) != 2 || rooms[0].ID != "lab1" || rooms[1].ID != "self" {
		t.Errorf("unexpected room order: %+v", rooms)
	}
}

func TestLoadRooms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rooms.yaml")
	content := `rooms:
  - id: lab1
    display_name: "Lab 1"
    capacity: 24
  - id: self
    display_name: "Self-study room"
    capacity: 36
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	catalog, err := LoadRooms(path)
	if err != nil {
		t.Fatalf("LoadRooms: %v", err)
	}
	if len(catalog.Rooms()) != 2 {
		t.Errorf("expected 2 rooms, got %d", len(catalog.Rooms()))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "database:\n  path: " + filepath.Join(dir, "test.db") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Window.OpenHour != 9 || cfg.Window.CloseHour != 21 {
		t.Errorf("expected default window 9-21, got %d-%d", cfg.Window.OpenHour, cfg.Window.CloseHour)
	}
	if cfg.RoomsConfigPath != "configs/rooms.yaml" {
		t.Errorf("unexpected rooms path: %s", cfg.RoomsConfigPath)
	}
}
