// Command triangulate is a minimal demo driving a Mesh end to end: it
// reads points (and optionally constraint segments) from a text file,
// builds the triangulation, routes any constraints, runs Ruppert
// refinement, and reports the result.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/iceisfun/tinmesh/mesh"
	"github.com/iceisfun/tinmesh/types"
)

func main() {
	var (
		pointsFile  = flag.String("points", "", "path to a file of whitespace-separated \"x y\" points, one per line (required)")
		constraints = flag.String("constraints", "", "path to a file of whitespace-separated \"x0 y0 x1 y1\" constraint segments, one per line")
		minAngle    = flag.Float64("min-angle", 0, "minimum triangle angle in degrees to enforce via Ruppert refinement; 0 disables refinement")
		spacing     = flag.Float64("spacing", 1.0, "nominal point spacing, drives the mesh's numeric tolerances")
	)
	flag.Parse()

	if *pointsFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: triangulate --points <file> [--constraints <file>] [--min-angle <deg>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*pointsFile, *constraints, *minAngle, *spacing); err != nil {
		log.Fatalf("triangulate: %v", err)
	}
}

func run(pointsFile, constraintsFile string, minAngle, spacing float64) error {
	pts, err := readPoints(pointsFile)
	if err != nil {
		return fmt.Errorf("reading points: %w", err)
	}

	m := mesh.New(spacing)

	bootstrapped, err := m.AddMany(pts, nil)
	if err != nil {
		return fmt.Errorf("adding points: %w", err)
	}
	if !bootstrapped {
		return fmt.Errorf("only %d usable point(s) supplied, need at least three non-collinear", len(pts))
	}
	log.Printf("bootstrapped mesh with %d vertices, %d triangles", len(m.Vertices()), m.CountTriangles())

	if constraintsFile != "" {
		cs, err := readConstraints(constraintsFile)
		if err != nil {
			return fmt.Errorf("reading constraints: %w", err)
		}
		if len(cs) > 0 {
			if err := m.AddConstraints(cs, true); err != nil {
				return fmt.Errorf("routing constraints: %w", err)
			}
			log.Printf("routed %d constraint segment(s), %d triangles", len(cs), m.CountTriangles())
		}
	}

	if minAngle > 0 {
		before := m.CountTriangles()
		err := m.Refine(&mesh.RefinementConfig{MinAngleDeg: minAngle, MaxIterations: 5000, Tolerance: 1e-9})
		log.Printf("refined from %d to %d triangles", before, m.CountTriangles())
		if err != nil {
			log.Printf("refinement did not fully converge: %v", err)
		}
	}

	report := m.CheckIntegrity()
	log.Printf("integrity: ok=%v triangles=%d perimeter-edges=%d perimeter-area=%.6f in-circle-violations=%d (constrained=%d)",
		report.OK, report.TriangleCount, report.PerimeterEdgeCount, report.PerimeterArea,
		report.InCircleViolations, report.InCircleViolationsConstrained)
	if !report.OK {
		log.Printf("first failure: %s", report.FirstFailure)
	}

	return nil
}

func readPoints(path string) ([]types.Vertex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var vs []types.Vertex
	idx := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %q: expected \"x y\"", line)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		vs = append(vs, types.Vertex{Index: idx, X: x, Y: y})
		idx++
	}
	return vs, sc.Err()
}

func readConstraints(path string) ([]types.Constraint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cs []types.Constraint
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("line %q: expected \"x0 y0 x1 y1\"", line)
		}
		coords := make([]float64, 4)
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %q: %w", line, err)
			}
			coords[i] = v
		}
		seg := []types.Vertex{
			{X: coords[0], Y: coords[1]},
			{X: coords[2], Y: coords[3]},
		}
		cs = append(cs, types.NewLinearConstraint(seg))
	}
	return cs, sc.Err()
}
