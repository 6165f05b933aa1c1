package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"filerelay/internal/domain/upload"
	"filerelay/internal/telegram"
)

// Callback tokens carried by inline buttons.
const (
	TokenHelp               = "help"
	TokenUploadInstructions = "upload_instructions"
	TokenMainMenu           = "main_menu"
	TokenPrivacy            = "privacy"
	TokenAdminPanel         = "admin_panel"
	TokenAdminStats         = "admin_stats"
	TokenAdminList          = "admin_list"
	TokenAdminRestart       = "admin_restart"

	deletePrefix       = "delete:"
	legacyDeletePrefix = "delete_"
)

const listLimit = 10

// Reply is one chat message: HTML text plus an optional keyboard.
type Reply struct {
	Text   string
	Markup *telegram.InlineKeyboardMarkup
}

// ListRow is one line of the admin file listing.
type ListRow struct {
	Record   upload.Record
	Username string
	URL      string
}

// Presenter renders every chat message the bot sends.
type Presenter struct {
	MaxFileSizeMB int64
	RateLimit     int
	AdminContact  string
	Location      *time.Location
}

func NewPresenter(maxFileSizeMB int64, rateLimit int) *Presenter {
	return &Presenter{
		MaxFileSizeMB: maxFileSizeMB,
		RateLimit:     rateLimit,
		AdminContact:  "@MAXWARORG",
		Location:      time.UTC,
	}
}

func DeleteData(messageID int64) string {
	return deletePrefix + strconv.FormatInt(messageID, 10)
}

func button(text, data string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, CallbackData: data}
}

func (p *Presenter) MainMenu(isAdmin bool) Reply {
	text := `🌟 <b>Welcome to File Uploader Bot!</b> 🌟

I can upload your files to our channel and provide you with a shareable link.

<b>Main Features:</b>
• Upload documents, photos, videos, and audio files
• Get direct links to your uploaded files
• Delete your files anytime
• Simple and intuitive interface

Use the buttons below to get started or type /help for more information.`

	buttons := []telegram.InlineKeyboardButton{
		button("📤 Upload File", TokenUploadInstructions),
		button("ℹ️ Help", TokenHelp),
		button("🔒 Privacy Policy", TokenPrivacy),
	}
	if isAdmin {
		buttons = append(buttons, button("🛠️ Admin Panel", TokenAdminPanel))
	}
	return Reply{Text: text, Markup: telegram.Keyboard(2, buttons...)}
}

func (p *Presenter) Help() Reply {
	text := fmt.Sprintf(`📚 <b>File Uploader Bot Help</b>

<b>Available commands:</b>
/start - Start the bot and get instructions
/help - Show this help message
/upload - Learn how to upload files
/privacy - View our privacy policy

<b>How to use:</b>
1. Send me a file (document, photo, video, or audio)
2. I'll automatically upload it to the channel
3. You'll get a shareable link
4. You can delete it anytime with the delete button

<b>Features:</b>
• Fast and secure file uploading
• Direct links to your files
• Delete functionality for your files
• Support for various file types
• Rate limiting (max %d files per minute)
• File size limit (%d MB max)`, p.RateLimit, p.MaxFileSizeMB)

	return Reply{Text: text, Markup: telegram.Keyboard(2,
		button("📤 How to Upload", TokenUploadInstructions),
		button("🔒 Privacy Policy", TokenPrivacy),
		button("🔙 Main Menu", TokenMainMenu),
	)}
}

func (p *Presenter) UploadInstructions() Reply {
	text := fmt.Sprintf(`📤 <b>How to Upload Files</b>

1. <b>Simple Upload:</b>
   • Just send me any file (document, photo, video, or audio)
   • I'll automatically upload it to the channel

2. <b>With Caption:</b>
   • Send a file with a caption
   • The caption will be included with your file

3. <b>Supported Formats:</b>
   • Documents (PDF, Word, Excel, etc.)
   • Photos (JPG, PNG, etc.)
   • Videos (MP4, etc.)
   • Audio files (MP3, etc.)

<b>Limitations:</b>
• Max file size: %d MB
• Max uploads: %d per minute

<i>Note: Large files may take longer to process.</i>`, p.MaxFileSizeMB, p.RateLimit)

	return Reply{Text: text, Markup: telegram.Keyboard(2,
		button("🔙 Main Menu", TokenMainMenu),
		button("ℹ️ General Help", TokenHelp),
	)}
}

func (p *Presenter) Privacy() Reply {
	text := fmt.Sprintf(`🔒 <b>Privacy Policy</b>

We are committed to protecting your privacy. Here's how we handle your data:

1. <b>Data Collection:</b> We only collect the data necessary for file uploading and management, such as your Telegram ID, username, and file metadata.

2. <b>Data Usage:</b> Your data is used solely to provide our services, including uploading files and managing your uploads. We do not share your data with third parties unless required by law.

3. <b>Data Storage:</b> Files and user data are stored temporarily and can be deleted at your request or automatically after a set period.

4. <b>Your Rights:</b> You can request deletion of your data or files at any time by contacting us or using the delete button.

5. <b>Contact Us:</b> For privacy concerns, contact our admin at %s.

By using this bot, you agree to this privacy policy.`, html.EscapeString(p.AdminContact))

	return Reply{Text: text, Markup: telegram.Keyboard(2, button("🔙 Main Menu", TokenMainMenu))}
}

func (p *Presenter) AdminPanel() Reply {
	text := `🛠️ <b>Admin Panel</b>

<b>Available Commands:</b>
/stats - Show bot statistics
/list - List all uploaded files
/restart - Clear all cached data

<b>Quick Actions:</b>`

	return Reply{Text: text, Markup: telegram.Keyboard(2,
		button("📊 View Stats", TokenAdminStats),
		button("📜 List Files", TokenAdminList),
		button("🔄 Clear Data", TokenAdminRestart),
		button("🔙 Main Menu", TokenMainMenu),
	)}
}

func (p *Presenter) adminFooter() *telegram.InlineKeyboardMarkup {
	return telegram.Keyboard(2,
		button("🛠️ Admin Panel", TokenAdminPanel),
		button("🔙 Main Menu", TokenMainMenu),
	)
}

func (p *Presenter) Stats(s upload.Stats) Reply {
	text := fmt.Sprintf(`📊 <b>Bot Statistics</b>

• Total files uploaded: %d
• Active users: %d
• Total storage used: %.2f MB
• Rate limit: %d files per minute
• Max file size: %d MB

<b>System Status:</b>
The bot is functioning normally.`, s.TotalCount, s.DistinctOwners, s.TotalSizeMB, p.RateLimit, p.MaxFileSizeMB)

	return Reply{Text: text, Markup: p.adminFooter()}
}

// FileList renders rows, oldest first, and notes when total exceeds them.
func (p *Presenter) FileList(rows []ListRow, total int) Reply {
	if len(rows) == 0 {
		return Reply{Text: "ℹ️ <b>No files uploaded yet.</b>"}
	}

	var b strings.Builder
	b.WriteString("📜 <b>Recently Uploaded Files</b>\n\n")
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. <b>%s</b> by @%s\n", i+1, kindTitle(row.Record.FileType), html.EscapeString(row.Username))
		fmt.Fprintf(&b, "   📅 %s | 📏 %s MB\n", p.formatTime(row.Record.UploadedAt, "2006-01-02 15:04"), formatSize(row.Record.SizeMB))
		fmt.Fprintf(&b, "   🔗 <a href='%s'>View File</a>\n\n", html.EscapeString(row.URL))
	}
	if total > len(rows) {
		fmt.Fprintf(&b, "<i>Showing last %d of %d files</i>", len(rows), total)
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n"), Markup: p.adminFooter()}
}

var kindEmoji = map[telegram.FileKind]string{
	telegram.KindDocument: "📄",
	telegram.KindPhoto:    "🖼️",
	telegram.KindVideo:    "🎬",
	telegram.KindAudio:    "🎵",
	telegram.KindVoice:    "🎤",
}

func (p *Presenter) UploadConfirmation(rec upload.Record, uploader telegram.Profile, url string) Reply {
	emoji, ok := kindEmoji[rec.FileType]
	if !ok {
		emoji = "📁"
	}

	text := fmt.Sprintf(`%s <b>File Successfully Uploaded!</b>

👤 <b>Uploaded by:</b> %s (@%s)
📅 <b>Upload time:</b> %s
📏 <b>File size:</b> %s MB

🔗 <b>Channel URL:</b> <a href="%s">Click here to view</a>

<i>You can delete this file using the button below.</i>`,
		emoji,
		html.EscapeString(uploader.FirstName),
		html.EscapeString(uploader.Username),
		p.formatTime(rec.UploadedAt, "2006-01-02 15:04:05"),
		formatSize(rec.SizeMB),
		html.EscapeString(url),
	)

	return Reply{Text: text, Markup: telegram.Keyboard(2,
		button("🗑️ Delete File", DeleteData(rec.ChannelMessageID)),
		telegram.InlineKeyboardButton{Text: "🔗 Copy Link", URL: url},
		button("📤 Upload Another", TokenUploadInstructions),
		button("🏠 Main Menu", TokenMainMenu),
	)}
}

func (p *Presenter) FileTooLarge(sizeMB float64) Reply {
	return Reply{Text: fmt.Sprintf("⚠️ <b>File Too Large</b>\n\nMaximum file size is %d MB. Your file is %.2f MB.", p.MaxFileSizeMB, sizeMB)}
}

func (p *Presenter) RateLimited() Reply {
	return Reply{Text: "⚠️ <b>Rate Limit Exceeded</b>\n\nPlease wait a minute before uploading more files."}
}

func (p *Presenter) UploadFailed() Reply {
	return Reply{Text: "❌ <b>Upload Failed</b>\n\nSorry, I couldn't upload your file. Please try again."}
}

func (p *Presenter) Restarted() Reply {
	return Reply{Text: "🔄 <b>Bot has been restarted.</b>\n\nAll cached data has been cleared."}
}

func (p *Presenter) Unknown() Reply {
	return Reply{Text: "❓ <b>Unknown Command</b>\n\nType /help to see available commands."}
}

func (p *Presenter) AdminOnly() Reply {
	return Reply{Text: "⛔ <b>Permission Denied</b>\n\nOnly admins can use this command."}
}

func (p *Presenter) Deleted() Reply {
	return Reply{Text: "✅ <b>File successfully deleted!</b>"}
}

func (p *Presenter) DeleteDenied() Reply {
	return Reply{Text: "⛔ <b>Permission Denied</b>\n\nOnly the uploader or admins can delete this file."}
}

func (p *Presenter) DeleteNotFound() Reply {
	return Reply{Text: "⚠️ <b>File not found</b>\n\nThis file may have already been deleted."}
}

// DeleteFailed offers a retry button for the same record.
func (p *Presenter) DeleteFailed(messageID int64) Reply {
	return Reply{
		Text:   "❌ <b>Failed to delete the file.</b>\n\nPlease try again.",
		Markup: telegram.Keyboard(1, button("Try Again", DeleteData(messageID))),
	}
}

func (p *Presenter) formatTime(unix int64, layout string) string {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(unix, 0).In(loc).Format(layout)
}

func kindTitle(k telegram.FileKind) string {
	s := string(k)
	if s == "" {
		return "File"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatSize(mb float64) string {
	return strconv.FormatFloat(mb, 'f', -1, 64)
}
