package engine

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Level is a course difficulty tier.
type Level string

const (
	LevelFoundation Level = "foundation"
	LevelAdvanced   Level = "advanced"
	LevelExpert     Level = "expert"
)

func (l Level) rank() int {
	switch l {
	case LevelFoundation:
		return 1
	case LevelAdvanced:
		return 2
	case LevelExpert:
		return 3
	default:
		return 0
	}
}

// Course is a catalog entry.
type Course struct {
	ID            string   `yaml:"id"`
	Slug          string   `yaml:"slug"`
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	Category      string   `yaml:"category"`
	Level         Level    `yaml:"level"`
	Rating        float64  `yaml:"rating"`
	DurationHours int      `yaml:"duration_hours"`
	Instructor    string   `yaml:"instructor"`
	Prerequisites []string `yaml:"prerequisites"`
	Skills        []string `yaml:"skills"`
	Modules       []Module `yaml:"modules"`
}

// Module is an ordered unit within a course. Each module trains one skill.
type Module struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Skill   string `yaml:"skill"`
	Lessons int    `yaml:"lessons"`
}

// Discussion is a community thread attached to a course.
type Discussion struct {
	ID       string `yaml:"id"`
	CourseID string `yaml:"course_id"`
	Title    string `yaml:"title"`
	Body     string `yaml:"body"`
}

// Concept is a tutor knowledge base entry.
type Concept struct {
	Name          string   `yaml:"name"`
	Keywords      []string `yaml:"keywords"`
	Definition    string   `yaml:"definition"`
	KeyPoints     []string `yaml:"key_points"`
	RelatedTopics []string `yaml:"related_topics"`
}

// Catalog is the read-only course catalog the engine serves from.
type Catalog struct {
	Courses     []Course     `yaml:"courses"`
	Discussions []Discussion `yaml:"discussions"`
	Concepts    []Concept    `yaml:"concepts"`

	byID     map[string]*Course
	modules  map[string]*Module
	moduleOf map[string]*Course
}

// DefaultCatalog parses the embedded seed catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultCatalogYAML)
}

// LoadCatalog parses and validates a YAML catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	c.byID = make(map[string]*Course, len(c.Courses))
	c.modules = make(map[string]*Module)
	c.moduleOf = make(map[string]*Course)
	for i := range c.Courses {
		course := &c.Courses[i]
		if course.ID == "" || course.Title == "" {
			return fmt.Errorf("course %d: id and title are required", i)
		}
		if _, dup := c.byID[course.ID]; dup {
			return fmt.Errorf("duplicate course id %q", course.ID)
		}
		if course.Level.rank() == 0 {
			return fmt.Errorf("course %q: unknown level %q", course.ID, course.Level)
		}
		for j := range course.Modules {
			m := &course.Modules[j]
			if _, dup := c.modules[m.ID]; m.ID == "" || dup {
				return fmt.Errorf("course %q: missing or duplicate module id %q", course.ID, m.ID)
			}
			c.modules[m.ID] = m
			c.moduleOf[m.ID] = course
		}
		c.byID[course.ID] = course
	}

	for _, course := range c.Courses {
		for _, p := range course.Prerequisites {
			if _, ok := c.byID[p]; !ok {
				return fmt.Errorf("course %q: unknown prerequisite %q", course.ID, p)
			}
		}
	}
	for _, d := range c.Discussions {
		if _, ok := c.byID[d.CourseID]; !ok {
			return fmt.Errorf("discussion %q: unknown course %q", d.ID, d.CourseID)
		}
	}
	return nil
}

// Course returns the course with the given id.
func (c *Catalog) Course(id string) (*Course, bool) {
	course, ok := c.byID[id]
	return course, ok
}

// Module returns the module with the given id and the course it belongs to.
func (c *Catalog) Module(id string) (*Course, *Module, bool) {
	m, ok := c.modules[id]
	if !ok {
		return nil, nil, false
	}
	return c.moduleOf[id], m, true
}

// CoursesForSkill returns the courses that train skill, in catalog order.
func (c *Catalog) CoursesForSkill(skill string) []*Course {
	var out []*Course
	for i := range c.Courses {
		for _, s := range c.Courses[i].Skills {
			if s == skill {
				out = append(out, &c.Courses[i])
				break
			}
		}
	}
	return out
}

// withPrerequisites expands ids to include every transitive prerequisite and
// returns the set ordered so prerequisites come first.
func (c *Catalog) withPrerequisites(ids []string) []*Course {
	seen := make(map[string]bool)
	var out []*Course
	var visit func(id string)
	visit = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		course, ok := c.byID[id]
		if !ok {
			return
		}
		for _, p := range course.Prerequisites {
			visit(p)
		}
		out = append(out, course)
	}
	for _, id := range ids {
		visit(id)
	}
	return out
}
