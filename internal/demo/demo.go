// Package demo provides a small set of commands that exercise every
// parameter type the registry supports. The CLI loads it by default and the
// end-to-end tests drive it through each front-end.
package demo

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/msto63/nucmd/internal/command"
)

// Color is the enum accepted by paint
type Color int

const (
	Red Color = iota
	Green
	Blue
)

// ColorType is the parameter type of Color
var ColorType = command.Enum[Color]("Color", "Red", "Green", "Blue")

// ErrFailed is returned by the fail command
var ErrFailed = errors.New("the fail command always fails")

// Commands is the demo provider
type Commands struct {
	mu  sync.Mutex
	rng *rand.Rand
	// sleep is replaced in tests
	sleep func(time.Duration)
}

// New returns the demo provider. A zero seed picks a random one.
func New(seed uint64) *Commands {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Commands{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		sleep: time.Sleep,
	}
}

// Commands implements command.Provider
func (c *Commands) Commands() []command.Definition {
	return []command.Definition{
		command.Define("echo", "Echoes the message back.", c.Echo,
			command.Required("msg", command.String).WithHelp("text to repeat")),
		command.Define("echo", "Adds two integers.", c.Sum,
			command.Required("a", command.Int),
			command.Required("b", command.Int)),
		command.Define("roll", "Rolls count dice with the given number of sides.", c.Roll,
			command.Required("sides", command.Int),
			command.Optional("count", command.Int, 1)),
		command.Define("paint", "Names the color it was given.", c.Paint,
			command.Required("color", ColorType)),
		command.Define("wait", "Sleeps for the duration, e.g. 250ms or 2s.", c.Wait,
			command.Required("d", command.Duration)),
		command.Define("fail", "Always fails.", c.Fail),
	}
}

// Echo returns msg
func (c *Commands) Echo(msg string) string { return msg }

// Sum adds a and b
func (c *Commands) Sum(a, b int) string { return strconv.Itoa(a + b) }

// Roll rolls count dice with sides faces each and returns the results
// separated by spaces.
func (c *Commands) Roll(sides, count int) (string, error) {
	if sides < 1 {
		return "", fmt.Errorf("a die needs at least one side, got %d", sides)
	}
	if count < 1 || count > 100 {
		return "", fmt.Errorf("count must be between 1 and 100, got %d", count)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	rolls := make([]string, count)
	for i := range rolls {
		rolls[i] = strconv.Itoa(c.rng.IntN(sides) + 1)
	}
	return strings.Join(rolls, " "), nil
}

// Paint names the color
func (c *Commands) Paint(color Color) string {
	name, ok := ColorType.Symbol(int(color))
	if !ok {
		name = strconv.Itoa(int(color))
	}
	return "Painted it " + name + "."
}

// Wait sleeps for d
func (c *Commands) Wait(d time.Duration) (string, error) {
	if d < 0 {
		return "", fmt.Errorf("negative duration %s", d)
	}
	c.sleep(d)
	return "Waited " + d.String() + ".", nil
}

// Fail always returns ErrFailed
func (c *Commands) Fail() (string, error) { return "", ErrFailed }
