package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/transport"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "apiclient",
		Short:         "Authenticated API client",
		Long:          "Send requests to an API with a stored credential that is renewed automatically when it expires",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "load configuration from this .env file (default .env)")

	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newSendCmd(a))
	root.AddCommand(newTokenCmd(a))
	return root
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "log in and store the issued credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !quiet {
				displayAppname(cmd.OutOrStdout(), a.cfg.GetAppName())
			}

			var err error
			if email == "" {
				if email, err = promptLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				password = os.Getenv("API_PASSWORD")
			}
			if password == "" {
				if password, err = promptPassword(cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			tok, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			if !tok.Expiry.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Access token expires %s\n", tok.Expiry.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted, or set API_PASSWORD)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the banner")
	return cmd
}

func newSendCmd(a *app) *cobra.Command {
	var data string
	var headers []string

	cmd := &cobra.Command{
		Use:   "send METHOD PATH",
		Short: "send an authenticated request and print the response body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(args[0], args[1], data, headers)
			if err != nil {
				return err
			}

			res, err := a.client.Send(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printBody(cmd.OutOrStdout(), res.Body)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header as 'Name: value' (repeatable)")
	return cmd
}

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "inspect or clear the stored credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "show the stored credentials (masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := credentials.Load(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "access token:  %s\n", mask(pair.AccessToken))
			if exp, ok := oauthmodel.AccessTokenExpiry(pair.AccessToken); ok {
				state := "valid"
				if time.Now().After(exp) {
					state = "expired"
				}
				fmt.Fprintf(out, "expires:       %s (%s)\n", exp.Local().Format(time.RFC1123), state)
			}
			fmt.Fprintf(out, "refresh token: %s\n", mask(pair.RefreshToken))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Credentials cleared")
			return nil
		},
	})
	return cmd
}

func buildRequest(method, path, data string, headers []string) (transport.Request, error) {
	var body []byte
	if data != "" {
		if !json.Valid([]byte(data)) {
			return transport.Request{}, errors.New("--data must be valid JSON")
		}
		body = []byte(data)
	}

	req := transport.NewRequest(strings.ToUpper(method), path, body)
	if body != nil {
		req.Header.Set(transport.HeaderContentType, "application/json")
	}
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return transport.Request{}, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return req, nil
}

// printBody pretty prints JSON bodies and writes anything else as-is
func printBody(w io.Writer, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	var v any
	if json.Unmarshal(body, &v) == nil {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, string(body))
	return err
}

func mask(token string) string {
	switch {
	case token == "":
		return "(none)"
	case len(token) <= 12:
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..." + token[len(token)-4:]
}

func promptLine(in io.Reader, out io.Writer, label string) (string, error) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, label)
		input, err := reader.ReadString('\n')
		value := strings.TrimSpace(input)
		if value != "" {
			return value, nil
		}
		if err != nil {
			return "", fmt.Errorf("error reading input: %w", err)
		}
		fmt.Fprintln(out, "Value cannot be empty. Please try again.")
	}
}

func promptPassword(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no password given and stdin is not a terminal; use --password or API_PASSWORD")
	}
	fmt.Fprint(out, "Password: ")
	passwordBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	return string(passwordBytes), nil
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
