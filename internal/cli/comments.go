package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookhub/internal/comment"

	"github.com/spf13/cobra"
)

type commentView struct {
	ID        int64         `json:"comment_id" yaml:"comment_id"`
	Username  string        `json:"username" yaml:"username"`
	Content   string        `json:"content" yaml:"content"`
	CreatedAt string        `json:"created_at" yaml:"created_at"`
	Likes     int           `json:"likes_count" yaml:"likes_count"`
	Dislikes  int           `json:"dislikes_count" yaml:"dislikes_count"`
	Vote      string        `json:"vote,omitempty" yaml:"vote,omitempty"`
	Replies   []commentView `json:"replies,omitempty" yaml:"replies,omitempty"`
}

func viewOf(t *comment.Thread, c comment.Comment) commentView {
	v := t.VoteOf(c.ID)
	out := commentView{
		ID:        c.ID,
		Username:  c.User.Username,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		Likes:     v.Counts.Likes,
		Dislikes:  v.Counts.Dislikes,
	}
	if v.State != comment.VoteUnknown {
		out.Vote = v.Direction.String()
	}
	for _, r := range c.Replies {
		out.Replies = append(out.Replies, viewOf(t, r))
	}
	return out
}

func writeComment(w io.Writer, t *comment.Thread, c comment.Comment, indent string) {
	v := t.VoteOf(c.ID)
	fmt.Fprintf(w, "%s#%d %s, %s  +%d -%d", indent, c.ID, c.User.Username, c.FormatDate(), v.Counts.Likes, v.Counts.Dislikes)
	if v.State != comment.VoteUnknown && v.Direction != comment.None {
		fmt.Fprintf(w, " (you: %s, %s)", v.Direction, v.State)
	}
	fmt.Fprintln(w)
	for _, line := range strings.Split(c.Content, "\n") {
		fmt.Fprintf(w, "%s  %s\n", indent, line)
	}
	for _, r := range c.Replies {
		writeComment(w, t, r, indent+"    ")
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("comment id %q is not valid", s)
	}
	return id, nil
}

func newCommentsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"comment"},
		Short:   "Read and write comment threads",
	}

	var collapsed bool
	list := &cobra.Command{
		Use:   "list <work-key>",
		Short: "Show the comment thread of a book, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, fresh := a.thread(cmd.Context(), args[0])
			if !fresh {
				t.Load(cmd.Context())
			}
			if collapsed {
				for _, c := range t.Comments() {
					if t.Expanded(c.ID) {
						t.Toggle(cmd.Context(), c.ID)
					}
				}
			}
			comments := t.Comments()
			views := make([]commentView, 0, len(comments))
			for _, c := range comments {
				views = append(views, viewOf(t, c))
			}
			return a.render(views, func(w io.Writer) {
				if len(comments) == 0 {
					fmt.Fprintln(w, "No comments yet")
					return
				}
				for _, c := range comments {
					writeComment(w, t, c, "")
				}
			})
		},
	}
	list.Flags().BoolVar(&collapsed, "collapsed", false, "hide replies")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "post <work-key> <text>...",
		Short: "Comment on a book",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _ := a.thread(cmd.Context(), args[0])
			if err := t.Post(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
				return err
			}
			a.say("Comment posted")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reply <work-key> <comment-id> <text>...",
		Short: "Reply to a comment",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			t, _ := a.thread(cmd.Context(), args[0])
			if err := t.Reply(cmd.Context(), id, strings.Join(args[2:], " ")); err != nil {
				return err
			}
			a.say("Reply posted")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <work-key> <comment-id>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			t, _ := a.thread(cmd.Context(), args[0])
			if err := t.Delete(cmd.Context(), id); err != nil {
				return err
			}
			a.say("Comment #%d deleted", id)
			return nil
		},
	})

	cmd.AddCommand(newVoteCmd(a, "like", "Like a comment", comment.Like))
	cmd.AddCommand(newVoteCmd(a, "dislike", "Dislike a comment", comment.Dislike))
	cmd.AddCommand(newVoteCmd(a, "unvote", "Withdraw your vote on a comment", comment.None))
	return cmd
}

// newVoteCmd builds like, dislike and unvote. Liking an already liked comment
// in the same session withdraws the like.
func newVoteCmd(a *App, use, short string, d comment.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <work-key> <comment-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			t, _ := a.thread(cmd.Context(), args[0])
			v, err := t.Vote(cmd.Context(), id, d)
			if err != nil {
				return fmt.Errorf("vote on comment #%d: %w", id, err)
			}
			res := commentView{ID: id, Likes: v.Counts.Likes, Dislikes: v.Counts.Dislikes, Vote: v.Direction.String()}
			return a.render(res, func(w io.Writer) {
				fmt.Fprintf(w, "#%d\t+%d -%d\tyou: %s (%s)\n", id, v.Counts.Likes, v.Counts.Dislikes, v.Direction, v.State)
			})
		},
	}
}
