package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/adminportal/internal/guard"
	"github.com/me/adminportal/internal/output"
	"github.com/me/adminportal/pkg/model"
)

func newCategoriesCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage categories (admin)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.authorize(cmd.Context(), guard.CategoriesPath)
			if err != nil {
				return err
			}
			cats, err := a.Categories.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list categories: %w", explain(err))
			}
			return output.Write(cmd.OutOrStdout(), s.output, cats)
		},
	}

	var createReq model.CreateCategoryRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.authorize(cmd.Context(), guard.CategoriesPath)
			if err != nil {
				return err
			}
			cat, err := a.CreateCategory(cmd.Context(), createReq)
			if err != nil {
				return fmt.Errorf("create category: %w", explain(err))
			}
			return output.Write(cmd.OutOrStdout(), s.output, cat)
		},
	}
	create.Flags().StringVar(&createReq.Name, "name", "", "Category name")
	create.Flags().StringVar(&createReq.Description, "description", "", "Category description")

	var name, description string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req model.UpdateCategoryRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if req.Name == nil && req.Description == nil {
				return fmt.Errorf("nothing to update: set --name or --description")
			}

			a, err := s.authorize(cmd.Context(), guard.CategoriesPath)
			if err != nil {
				return err
			}
			cat, err := a.UpdateCategory(cmd.Context(), args[0], req)
			if err != nil {
				return fmt.Errorf("update category: %w", explain(err))
			}
			return output.Write(cmd.OutOrStdout(), s.output, cat)
		},
	}
	update.Flags().StringVar(&name, "name", "", "New name")
	update.Flags().StringVar(&description, "description", "", "New description")

	cmd.AddCommand(list, create, update)
	return cmd
}

func newTagsCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag"},
		Short:   "Manage tags (admin)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.authorize(cmd.Context(), guard.TagsPath)
			if err != nil {
				return err
			}
			tags, err := a.Tags.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list tags: %w", explain(err))
			}
			return output.Write(cmd.OutOrStdout(), s.output, tags)
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.authorize(cmd.Context(), guard.TagsPath)
			if err != nil {
				return err
			}
			tag, err := a.CreateTag(cmd.Context(), model.CreateTagRequest{Name: args[0]})
			if err != nil {
				return fmt.Errorf("create tag: %w", explain(err))
			}
			return output.Write(cmd.OutOrStdout(), s.output, tag)
		},
	}

	update := &cobra.Command{
		Use:   "update <id> <name>",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.authorize(cmd.Context(), guard.TagsPath)
			if err != nil {
				return err
			}
			tag, err := a.UpdateTag(cmd.Context(), args[0], model.UpdateTagRequest{Name: args[1]})
			if err != nil {
				return fmt.Errorf("update tag: %w", explain(err))
			}
			return output.Write(cmd.OutOrStdout(), s.output, tag)
		},
	}

	cmd.AddCommand(list, create, update)
	return cmd
}
