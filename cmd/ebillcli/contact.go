package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/identity"
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Manage the local address book",
}

var contactAddCmd = &cobra.Command{
	Use:   "add [node_id] [name]",
	Short: "Add or update a contact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		c := identity.Contact{NodeID: chain.NodeID(args[0]), Name: args[1], Type: identity.ContactPerson}
		if relay, _ := cmd.Flags().GetString("relay"); relay != "" {
			c.RelayURL = relay
		}
		return n.contacts.Upsert(context.Background(), c)
	},
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		contacts, err := n.contacts.GetAll(context.Background())
		if err != nil {
			return err
		}
		for _, c := range contacts {
			fmt.Printf("%s\t%s\n", c.NodeID, c.Name)
		}
		return nil
	},
}

func init() {
	contactAddCmd.Flags().String("relay", "", "relay URL to reach this contact at")
	contactCmd.AddCommand(contactAddCmd, contactListCmd)
}
