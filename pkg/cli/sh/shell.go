// Package sh provides the interactive host shell driving a device over
// the protocol.
package sh

import (
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/serialproto/pkg/host"
	"github.com/robotalks/serialproto/pkg/link/serial"
	"github.com/robotalks/serialproto/pkg/msgs"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *host.Config
	Client *host.Client

	closer io.Closer
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&PortsCmd,
		&ZeroCmd,
		&ScenarioCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *host.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Connect opens the link, replacing the current one.
func (s *Shell) Connect(link string) error {
	conf := *s.Config
	if link != "" {
		conf.Link = link
	}
	client, closer, err := conf.Dial()
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Client, s.closer = client, closer
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conf.Link))
	return nil
}

// Disconnect closes the current link.
func (s *Shell) Disconnect() {
	if s.closer != nil {
		s.closer.Close()
	}
	s.Client, s.closer = nil, nil
	s.Shell.SetPrompt(unconnectedPrompt)
}

// MustBeConnected wraps command func requiring a link. The configured
// link is opened on demand.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Client == nil {
			if err := s.Connect(""); err != nil {
				c.Err(fmt.Errorf("not connected: %w", err))
				return
			}
		}
		fn(c)
	}
}

// DoCommand sends a command and prints the response.
func DoCommand(c *ishell.Context, cmd msgs.Command) error {
	s := ShellFrom(c)
	if s.Client == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	resp, err := s.Client.Exchange(cmd, 0)
	if err != nil {
		c.Err(err)
		return err
	}
	return s.PrintResponse(c, resp)
}

// PrintResponse prints a response in the selected format.
func (s *Shell) PrintResponse(c *ishell.Context, resp msgs.Response) error {
	if s.OutputJSON {
		out, err := FormatJSON(resp)
		if err != nil {
			c.Err(err)
			return err
		}
		c.Println(string(out))
		return nil
	}
	c.Println(FormatResponse(resp))
	return nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Disconnect()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// ConnectCmd opens a link.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[LINK]",
		Func: func(c *ishell.Context) {
			var link string
			if len(c.Args) > 0 {
				link = c.Args[0]
			}
			if err := ShellFrom(c).Connect(link); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes the current link.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ports, err := serial.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// ZeroCmd sends a lone terminator, which the device rejects as a
	// corrupted frame.
	ZeroCmd = ishell.Cmd{
		Name: "zero",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			if err := s.Client.SendRaw([]byte{0}); err != nil {
				c.Err(err)
				return
			}
			resp, err := s.Client.WaitForResponse(s.Client.Timeout)
			if err != nil {
				c.Err(err)
				return
			}
			s.PrintResponse(c, resp)
		}),
	}

	// ScenarioCmd runs the basic end-to-end scenario.
	ScenarioCmd = ishell.Cmd{
		Name: "scenario",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			err := s.Client.RunScenario(host.BasicScenario(msgs.Now()), s.Client.Timeout, func(step host.Step, resp msgs.Response) {
				c.Printf("%v -> %s\n", step.Command, FormatResponse(resp))
			})
			if err != nil {
				c.Err(err)
				return
			}
			c.Println("scenario passed")
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(host.NewConfig()).Run(flag.Args()...)
}
