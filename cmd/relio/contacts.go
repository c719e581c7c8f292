package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Inspect persisted contacts",
	}
	cmd.AddCommand(newContactsListCmd())
	cmd.AddCommand(newContactsShowCmd())
	cmd.AddCommand(newContactsNoteCmd())
	cmd.AddCommand(newContactsRemoveCmd())
	return cmd
}

func newContactsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored contact ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := buildSystem()
			if err != nil {
				return err
			}
			ids, err := sys.Contacts()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func newContactsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <contact-id>",
		Short: "Print one contact as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := buildSystem()
			if err != nil {
				return err
			}
			contact, err := sys.Contact(args[0])
			if err != nil {
				return err
			}
			if contact == nil {
				return fmt.Errorf("contact %q not found", args[0])
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(contact)
		},
	}
}

func newContactsNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note <contact-id> <content>",
		Short: "Attach a long-term memory note to a contact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := buildSystem()
			if err != nil {
				return err
			}
			source, _ := cmd.Flags().GetString("source")
			note, err := sys.AddNote(args[0], args[1], source)
			if err != nil {
				return err
			}
			fmt.Printf("note %s added\n", note.NoteID)
			return nil
		},
	}
	cmd.Flags().String("source", "manual", "Note source (manual or system).")
	return cmd
}

func newContactsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <contact-id>",
		Short: "Remove a contact and all its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := buildSystem()
			if err != nil {
				return err
			}
			if err := sys.RemoveContact(args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}
}
