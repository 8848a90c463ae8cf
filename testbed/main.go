// Command testbed fans a simulation sweep out over a set of remote hosts
// and collects the result files. Hosts are described by a JSON list; the
// sweep is a JSON array of flag strings, one sim invocation per entry,
// assigned to hosts round-robin.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

type Host struct {
	Name    string
	Addr    string // host:port
	User    string
	KeyPath string
	WorkDir string
}

func readHosts(path string) ([]Host, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening host list")
	}
	defer f.Close()
	var hosts []Host
	if err := json.NewDecoder(f).Decode(&hosts); err != nil {
		return nil, errors.Wrapf(err, "decoding host list %s", path)
	}
	return hosts, nil
}

func readSweep(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sweep file")
	}
	defer f.Close()
	var runs []string
	if err := json.NewDecoder(f).Decode(&runs); err != nil {
		return nil, errors.Wrapf(err, "decoding sweep file %s", path)
	}
	return runs, nil
}

func connect(h Host) (*ssh.Client, error) {
	key, err := os.ReadFile(h.KeyPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading key for %s", h.Name)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing key for %s", h.Name)
	}
	cfg := &ssh.ClientConfig{
		User:            h.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}
	client, err := ssh.Dial("tcp", h.Addr, cfg)
	return client, errors.Wrapf(err, "dialing %s", h.Name)
}

// scp shells out for file transfer, matching the key and host-check
// settings used for the control connection.
func scp(h Host, from, to string) error {
	args := []string{
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-i", h.KeyPath, from, to,
	}
	return errors.Wrapf(exec.Command("scp", args...).Run(), "scp %s", from)
}

func remote(h Host, path string) string {
	return fmt.Sprintf("%s@%s:%s", h.User, hostOnly(h.Addr), path)
}

func hostOnly(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}

func run(c *ssh.Client, cmd string) (string, error) {
	sess, err := c.NewSession()
	if err != nil {
		return "", errors.Wrap(err, "creating session")
	}
	defer sess.Close()
	out, err := sess.CombinedOutput(cmd)
	return string(out), errors.Wrapf(err, "running %q", cmd)
}

func forEachHost(hosts []Host, clients []*ssh.Client, fn func(int, Host, *ssh.Client) error) {
	wg := &sync.WaitGroup{}
	wg.Add(len(hosts))
	for i := range hosts {
		go func(i int) {
			defer wg.Done()
			if err := fn(i, hosts[i], clients[i]); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", hosts[i].Name, err)
			}
		}(i)
	}
	wg.Wait()
}

func main() {
	hostFile := flag.String("l", "hosts.json", "path to the host list")
	install := flag.String("install", "", "upload the given sim binary to every host")
	sweepFile := flag.String("run", "", "dispatch the sweep described by the given file")
	fetch := flag.String("dl", "", "download result files, storing them with the given prefix")
	flag.Parse()

	hosts, err := readHosts(*hostFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	clients := make([]*ssh.Client, len(hosts))
	wg := &sync.WaitGroup{}
	wg.Add(len(hosts))
	for i, h := range hosts {
		go func(i int, h Host) {
			defer wg.Done()
			c, err := connect(h)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			clients[i] = c
		}(i, h)
	}
	wg.Wait()

	if *install != "" {
		forEachHost(hosts, clients, func(i int, h Host, c *ssh.Client) error {
			return scp(h, *install, remote(h, h.WorkDir+"/srsim"))
		})
	}

	if *sweepFile != "" {
		runs, err := readSweep(*sweepFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		forEachHost(hosts, clients, func(i int, h Host, c *ssh.Client) error {
			for j := i; j < len(runs); j += len(hosts) {
				cmd := fmt.Sprintf("cd %s && ./srsim %s -out result-%d.json > stdout-%d.txt 2> stderr-%d.txt",
					h.WorkDir, runs[j], j, j, j)
				if _, err := run(c, cmd); err != nil {
					return err
				}
				fmt.Printf("%s: finished run %d\n", h.Name, j)
			}
			return nil
		})
	}

	if *fetch != "" {
		if *sweepFile == "" {
			fmt.Fprintln(os.Stderr, "-dl needs -run to know which results exist")
			os.Exit(1)
		}
		runs, err := readSweep(*sweepFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		forEachHost(hosts, clients, func(i int, h Host, c *ssh.Client) error {
			for j := i; j < len(runs); j += len(hosts) {
				src := remote(h, fmt.Sprintf("%s/result-%d.json", h.WorkDir, j))
				if err := scp(h, src, fmt.Sprintf("%s-%d.json", *fetch, j)); err != nil {
					return err
				}
			}
			return nil
		})
	}
}
