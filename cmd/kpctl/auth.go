package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginUser     string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginUser == "" {
			loginUser = prompt("Username: ")
		}
		if loginPassword == "" {
			loginPassword = prompt("Password: ")
		}
		sess, err := container.AuthService.Login(cmd.Context(), loginUser, loginPassword)
		if err != nil {
			return err
		}
		colorGreen.Printf("Logged in as %s\n", sess.Identity.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		container.AuthService.Logout()
		fmt.Println("Logged out")
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password EMAIL",
	Short: "Request password reset instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := container.AuthService.ResetPassword(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("If the address is registered, reset instructions are on their way")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Service:  %s\n", container.Config.GetAPIBaseURL())
		sess, ok := container.Sessions.Current()
		if !ok {
			colorYellow.Println("Not logged in")
			return nil
		}
		fmt.Printf("User:     %s\n", sess.Identity.Username)
		fmt.Printf("Since:    %s\n", sess.EstablishedAt.Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
}

func prompt(label string) string {
	fmt.Print(label)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}
