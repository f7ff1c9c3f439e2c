package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{"frame", "time", "id", "mass", "x", "y", "z", "vx", "vy", "vz"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string            `json:"id"`
	Scenario      string            `json:"scenario"`
	Timestamp     time.Time         `json:"timestamp"`
	G             float64           `json:"g"`
	FPS           int               `json:"fps"`
	Dt            float64           `json:"dt"`
	Frames        int               `json:"frames"`
	FramesTaken   int               `json:"frames_taken"`
	Mode          string            `json:"mode"`
	Names         []string          `json:"names"`
	MomentumDrift Number            `json:"momentum_drift"`
	EnergyDrift   Number            `json:"energy_drift"`
	Metrics       map[string]Number `json:"metrics"`
	Errors        []string          `json:"errors,omitempty"`
}

// Save writes meta and the recorded frames of result into a new run
// directory and returns its ID. ID, Timestamp and the result summary fields
// of meta are filled in here.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Scenario, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Mode = result.Mode.String()
	meta.FramesTaken = result.FramesTaken
	meta.MomentumDrift = Number(result.MomentumDrift)
	meta.EnergyDrift = Number(result.EnergyDrift)
	meta.Metrics = numbers(result.Metrics)
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTrajectory(csvFile, result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteTrajectory writes one CSV row per body per frame.
func WriteTrajectory(w io.Writer, frames []dynamo.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, frame := range frames {
		for _, b := range frame.Bodies {
			row := []string{
				strconv.Itoa(frame.Index),
				f(frame.Time),
				strconv.FormatUint(b.ID, 10),
				f(b.Mass),
				f(b.Position.X), f(b.Position.Y), f(b.Position.Z),
				f(b.Velocity.X), f(b.Velocity.Y), f(b.Velocity.Z),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// TrajectoryPath returns the CSV file of a run.
func (s *Store) TrajectoryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, trajectoryFile)
}

// LoadFrames reads the recorded frames of a run back.
func (s *Store) LoadFrames(runID string) ([]dynamo.Frame, error) {
	file, err := os.Open(s.TrajectoryPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadTrajectory(file)
}

// ReadTrajectory parses the output of WriteTrajectory. Rows are grouped into
// frames by their frame column, in file order.
func ReadTrajectory(r io.Reader) ([]dynamo.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(trajectoryHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []dynamo.Frame{}, nil
	}

	frames := make([]dynamo.Frame, 0)
	for line, record := range records[1:] {
		index, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("trajectory line %d: frame: %w", line+2, err)
		}
		id, err := strconv.ParseUint(record[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("trajectory line %d: id: %w", line+2, err)
		}

		var vals [8]float64
		for i, col := range []int{1, 3, 4, 5, 6, 7, 8, 9} {
			if vals[i], err = strconv.ParseFloat(record[col], 64); err != nil {
				return nil, fmt.Errorf("trajectory line %d: %s: %w", line+2, trajectoryHeader[col], err)
			}
		}

		if len(frames) == 0 || frames[len(frames)-1].Index != index {
			frames = append(frames, dynamo.Frame{Index: index, Time: vals[0]})
		}
		last := &frames[len(frames)-1]
		last.Bodies = append(last.Bodies, dynamo.Body{
			ID:       id,
			Mass:     vals[1],
			Position: r3.Vec{X: vals[2], Y: vals[3], Z: vals[4]},
			Velocity: r3.Vec{X: vals[5], Y: vals[6], Z: vals[7]},
		})
	}

	return frames, nil
}
